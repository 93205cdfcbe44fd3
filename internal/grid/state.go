package grid

import "sort"

// SortOrder is the direction of the active sorter. The zero value is unset.
type SortOrder string

const (
	OrderNone SortOrder = ""
	OrderAsc  SortOrder = "ASC"
	OrderDesc SortOrder = "DES"
)

// ActiveFilter is a predicate bound to a live search term.
type ActiveFilter struct {
	FieldID   string
	Term      any
	Predicate Predicate
}

// ActiveSorter is the single applied comparator and its direction.
type ActiveSorter struct {
	FieldID    string
	Order      SortOrder
	Comparator Comparator
}

// State is the interaction state of one grid. Transitions never modify a
// State in place; they return a new one sharing untouched maps.
type State struct {
	Visible map[string]string
	Filters map[string]ActiveFilter
	Sorter  *ActiveSorter
}

// InitialState shows every column of schema with no filter or sorter.
func InitialState(schema *Schema) State {
	return State{
		Visible: schema.AllVisible(),
		Filters: map[string]ActiveFilter{},
	}
}

func (s State) IsVisible(id string) bool {
	_, ok := s.Visible[id]
	return ok
}

// VisibleIDs returns the visible ids sorted lexically.
func (s State) VisibleIDs() []string {
	ids := make([]string, 0, len(s.Visible))
	for id := range s.Visible {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FilterFields returns the fields with an active filter, sorted.
func (s State) FilterFields() []string {
	fields := make([]string, 0, len(s.Filters))
	for field := range s.Filters {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// OrderOf returns the active order of fieldID, if it holds the sorter.
func (s State) OrderOf(fieldID string) SortOrder {
	if s.Sorter == nil || s.Sorter.FieldID != fieldID {
		return OrderNone
	}
	return s.Sorter.Order
}

// Term returns the active term of fieldID.
func (s State) Term(fieldID string) (any, bool) {
	f, ok := s.Filters[fieldID]
	if !ok {
		return nil, false
	}
	return f.Term, true
}

func (s State) withFilters(filters map[string]ActiveFilter) State {
	s.Filters = filters
	return s
}

func copyFilters(in map[string]ActiveFilter) map[string]ActiveFilter {
	out := make(map[string]ActiveFilter, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}

// EventKind identifies what the engine asks the presentation layer to do.
type EventKind int

const (
	// EventFilterCleared asks the owner of the filter input to reset it and
	// submit an empty term.
	EventFilterCleared EventKind = iota + 1
	// EventFilterDropped reports a filter removed because its column was hidden.
	EventFilterDropped
	// EventSortCleared reports the sorter removed because its column was hidden.
	EventSortCleared
)

func (k EventKind) String() string {
	switch k {
	case EventFilterCleared:
		return "filter_cleared"
	case EventFilterDropped:
		return "filter_dropped"
	case EventSortCleared:
		return "sort_cleared"
	default:
		return "unknown"
	}
}

// Event is emitted by state transitions.
type Event struct {
	Kind    EventKind
	FieldID string
}
