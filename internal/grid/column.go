package grid

import "fmt"

// Row is an opaque record. Fields are only ever addressed through a column's
// FieldID and the engine never mutates or copies a row.
type Row map[string]any

// Kind is the resolved capability of a column.
type Kind int

const (
	KindUnknown Kind = iota
	KindString
	KindNumber
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// Predicate reports whether row matches term.
type Predicate func(row Row, term any) bool

// Comparator orders two rows for the given order. Synthesized comparators
// already account for order; custom ones receive it and must do the same.
type Comparator func(a, b Row, order SortOrder) int

// FilterInput tells a presentation layer how to collect a filter term.
type FilterInput int

const (
	InputAuto FilterInput = iota
	InputText
	InputNumber
	InputCheckbox
	InputChoices
	InputRange
)

// FilterSpec marks a column as filterable. A zero FilterSpec is the
// "filter: true" shorthand: the predicate is synthesized from the column kind.
type FilterSpec struct {
	Predicate Predicate
	Input     FilterInput
	Choices   []string
}

// SortSpec marks a column as sortable. A zero SortSpec synthesizes the
// comparator from the column kind.
type SortSpec struct {
	Comparator Comparator
}

// AutoFilter returns the shorthand filter settings.
func AutoFilter() *FilterSpec { return &FilterSpec{} }

// AutoSort returns the shorthand sort settings.
func AutoSort() *SortSpec { return &SortSpec{} }

// Column declares one presented field.
type Column struct {
	// ID is the identity used for visibility. Empty means HeaderName.
	ID         string
	FieldID    string
	HeaderName string
	// Width is a fractional weight; zero counts as one.
	Width int
	// Type overrides inference when not KindUnknown.
	Type   Kind
	Filter *FilterSpec
	Sort   *SortSpec

	Display  func(row Row) string
	Editable bool
	OnEdited func(row Row, fieldID, value string) error
}

// Key returns the identity of the column.
func (c Column) Key() string {
	if c.ID != "" {
		return c.ID
	}
	return c.HeaderName
}

// Cell renders the value of the column for row.
func (c Column) Cell(row Row) string {
	if c.Display != nil {
		return c.Display(row)
	}
	value, ok := row[c.FieldID]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

// InputFor resolves InputAuto against kind.
func (f *FilterSpec) InputFor(kind Kind) FilterInput {
	if f == nil {
		return InputAuto
	}
	if f.Input != InputAuto {
		return f.Input
	}
	switch kind {
	case KindNumber:
		return InputNumber
	case KindBoolean:
		return InputCheckbox
	default:
		return InputText
	}
}
