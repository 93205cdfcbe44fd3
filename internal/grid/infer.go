package grid

// ResolveKind classifies a column from its Type and the value on the first
// sample row. String wins when either names it, so a number column whose
// first value is text still filters by substring. Otherwise an explicit Type
// wins over the value. Columns with neither stay KindUnknown and get no
// predicate or comparator.
func ResolveKind(column Column, sample []Row) Kind {
	var value any
	if len(sample) > 0 && sample[0] != nil {
		value = sample[0][column.FieldID]
	}
	if _, ok := value.(string); ok || column.Type == KindString {
		return KindString
	}
	if column.Type != KindUnknown {
		return column.Type
	}
	if _, ok := value.(bool); ok {
		return KindBoolean
	}
	if value != nil && isNumber(value) {
		return KindNumber
	}
	return KindUnknown
}

// ResolveKinds resolves every column, keyed by field id.
func ResolveKinds(columns []Column, sample []Row) map[string]Kind {
	kinds := make(map[string]Kind, len(columns))
	for _, column := range columns {
		kinds[column.FieldID] = ResolveKind(column, sample)
	}
	return kinds
}
