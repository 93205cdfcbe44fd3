package grid

import (
	"errors"
	"fmt"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var (
	ErrDuplicateColumn = errors.New("duplicate column id")
	ErrDuplicateField  = errors.New("duplicate field id")
	ErrEmptyField      = errors.New("column without field id")
	ErrUnknownField    = errors.New("unknown field")
	ErrUnknownColumn   = errors.New("unknown column")
	ErrNotEditable     = errors.New("column is not editable")
)

// Schema is the normalized, immutable view of one column generation.
type Schema struct {
	columns     []Column
	ids         []string
	labels      map[string]string
	fieldIDs    map[string]string
	byID        map[string]int
	byField     map[string]int
	kinds       map[string]Kind
	predicates  map[string]Predicate
	comparators map[string]Comparator
}

// NewSchema normalizes columns, resolves their kinds against the first sample
// row and derives predicates and comparators. A nil collator uses the root
// locale.
func NewSchema(columns []Column, sample []Row, collator *collate.Collator) (*Schema, error) {
	if collator == nil {
		collator = collate.New(language.Und)
	}
	s := &Schema{
		columns:  append([]Column(nil), columns...),
		ids:      make([]string, 0, len(columns)),
		labels:   make(map[string]string, len(columns)),
		fieldIDs: make(map[string]string, len(columns)),
		byID:     make(map[string]int, len(columns)),
		byField:  make(map[string]int, len(columns)),
	}
	for i, column := range s.columns {
		if column.FieldID == "" {
			return nil, fmt.Errorf("column %q: %w", column.HeaderName, ErrEmptyField)
		}
		id := column.Key()
		if _, dup := s.byID[id]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, id)
		}
		if _, dup := s.byField[column.FieldID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateField, column.FieldID)
		}
		s.ids = append(s.ids, id)
		s.labels[id] = column.HeaderName
		s.fieldIDs[id] = column.FieldID
		s.byID[id] = i
		s.byField[column.FieldID] = i
	}
	s.kinds = ResolveKinds(s.columns, sample)
	s.predicates = DerivePredicates(s.columns, s.kinds)
	s.comparators = DeriveComparators(s.columns, s.kinds, collator)
	return s, nil
}

// Columns returns the columns in declaration order.
func (s *Schema) Columns() []Column {
	return append([]Column(nil), s.columns...)
}

// IDs returns the column ids in declaration order.
func (s *Schema) IDs() []string {
	return append([]string(nil), s.ids...)
}

// HeaderNames returns the display labels in declaration order.
func (s *Schema) HeaderNames() []string {
	names := make([]string, len(s.ids))
	for i, id := range s.ids {
		names[i] = s.labels[id]
	}
	return names
}

// AllVisible is the identity set used as the initial visibility.
func (s *Schema) AllVisible() map[string]string {
	visible := make(map[string]string, len(s.ids))
	for _, id := range s.ids {
		visible[id] = id
	}
	return visible
}

// FieldIDs maps column id to field id.
func (s *Schema) FieldIDs() map[string]string {
	out := make(map[string]string, len(s.fieldIDs))
	for id, field := range s.fieldIDs {
		out[id] = field
	}
	return out
}

func (s *Schema) Column(id string) (Column, bool) {
	idx, ok := s.byID[id]
	if !ok {
		return Column{}, false
	}
	return s.columns[idx], true
}

func (s *Schema) ColumnByField(fieldID string) (Column, bool) {
	idx, ok := s.byField[fieldID]
	if !ok {
		return Column{}, false
	}
	return s.columns[idx], true
}

// Kind returns the resolved capability of a field.
func (s *Schema) Kind(fieldID string) Kind {
	return s.kinds[fieldID]
}

func (s *Schema) Predicate(fieldID string) Predicate {
	return s.predicates[fieldID]
}

func (s *Schema) Comparator(fieldID string) Comparator {
	return s.comparators[fieldID]
}

// VisibleFieldIDs maps the visible ids of state to field ids, in column order.
func (s *Schema) VisibleFieldIDs(state State) []string {
	var fields []string
	for _, id := range s.ids {
		if state.IsVisible(id) {
			fields = append(fields, s.fieldIDs[id])
		}
	}
	return fields
}

func (s *Schema) fieldVisible(state State, fieldID string) bool {
	idx, ok := s.byField[fieldID]
	if !ok {
		return false
	}
	return state.IsVisible(s.columns[idx].Key())
}
