package grid

import (
	"fmt"
	"strings"
)

// DerivePredicates builds the predicate of every filterable column. Custom
// predicates win; otherwise string columns match case-insensitive substrings
// and number or boolean columns match by equality. Unknown kinds are omitted.
func DerivePredicates(columns []Column, kinds map[string]Kind) map[string]Predicate {
	predicates := make(map[string]Predicate)
	for _, column := range columns {
		if column.Filter == nil {
			continue
		}
		if column.Filter.Predicate != nil {
			predicates[column.FieldID] = column.Filter.Predicate
			continue
		}
		switch kinds[column.FieldID] {
		case KindString:
			predicates[column.FieldID] = containsPredicate(column.FieldID)
		case KindNumber, KindBoolean:
			predicates[column.FieldID] = equalPredicate(column.FieldID)
		}
	}
	return predicates
}

func containsPredicate(fieldID string) Predicate {
	return func(row Row, term any) bool {
		value := strings.ToLower(stringOf(row[fieldID]))
		return strings.Contains(value, strings.ToLower(stringOf(term)))
	}
}

func equalPredicate(fieldID string) Predicate {
	return func(row Row, term any) bool {
		return equalValues(row[fieldID], term)
	}
}

// ApplyFilters keeps the rows passing every active predicate. With nothing to
// apply the input slice itself is returned.
func ApplyFilters(rows []Row, filters map[string]ActiveFilter) []Row {
	active := make([]ActiveFilter, 0, len(filters))
	for _, f := range filters {
		if f.Predicate != nil {
			active = append(active, f)
		}
	}
	if len(active) == 0 {
		return rows
	}
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if matchesAll(row, active) {
			out = append(out, row)
		}
	}
	return out
}

func matchesAll(row Row, filters []ActiveFilter) bool {
	for _, f := range filters {
		if !f.Predicate(row, f.Term) {
			return false
		}
	}
	return true
}

// ChangeFilter upserts or removes the filter of fieldID. A change on a hidden
// column is ignored. Filterable columns without a resolvable predicate still
// record the term; the entry is inert.
func ChangeFilter(schema *Schema, state State, fieldID string, term any) (State, error) {
	column, ok := schema.ColumnByField(fieldID)
	if !ok || column.Filter == nil {
		return state, fmt.Errorf("filter %q: %w", fieldID, ErrUnknownField)
	}
	if !schema.fieldVisible(state, fieldID) {
		return state, nil
	}
	filters := copyFilters(state.Filters)
	if IsEmptyTerm(term) {
		if _, ok := filters[fieldID]; !ok {
			return state, nil
		}
		delete(filters, fieldID)
		return state.withFilters(filters), nil
	}
	filters[fieldID] = ActiveFilter{
		FieldID:   fieldID,
		Term:      term,
		Predicate: schema.Predicate(fieldID),
	}
	return state.withFilters(filters), nil
}

// PruneFilters drops filters whose column is no longer visible.
func PruneFilters(schema *Schema, state State) (State, []Event) {
	var events []Event
	var kept map[string]ActiveFilter
	for _, field := range state.FilterFields() {
		if schema.fieldVisible(state, field) {
			continue
		}
		if kept == nil {
			kept = copyFilters(state.Filters)
		}
		delete(kept, field)
		events = append(events, Event{Kind: EventFilterDropped, FieldID: field})
	}
	if kept == nil {
		return state, nil
	}
	return state.withFilters(kept), events
}

// ClearFilters asks for every active filter to be cleared, once each. The
// state is left untouched: owners of the inputs react to the events by
// submitting empty terms.
func ClearFilters(state State) []Event {
	fields := state.FilterFields()
	events := make([]Event, 0, len(fields))
	for _, field := range fields {
		events = append(events, Event{Kind: EventFilterCleared, FieldID: field})
	}
	return events
}

// rebindFilters attaches the predicates of a new schema generation and drops
// filters whose field disappeared or stopped being filterable.
func rebindFilters(schema *Schema, filters map[string]ActiveFilter) (map[string]ActiveFilter, []Event) {
	var events []Event
	out := make(map[string]ActiveFilter, len(filters))
	for _, field := range (State{Filters: filters}).FilterFields() {
		f := filters[field]
		column, ok := schema.ColumnByField(field)
		if !ok || column.Filter == nil {
			events = append(events, Event{Kind: EventFilterDropped, FieldID: field})
			continue
		}
		f.Predicate = schema.Predicate(field)
		out[field] = f
	}
	return out, events
}
