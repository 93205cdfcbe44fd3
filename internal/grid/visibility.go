package grid

// SetVisible replaces the visible set. Nil or empty hides every column and
// unknown ids are ignored. Filters and the sorter of columns that become
// hidden are dropped.
func SetVisible(schema *Schema, state State, ids []string) (State, []Event) {
	visible := make(map[string]string, len(ids))
	for _, id := range ids {
		if _, ok := schema.Column(id); ok {
			visible[id] = id
		}
	}
	state.Visible = visible
	return prune(schema, state)
}

// ToggleVisible shows a hidden column or hides a visible one.
func ToggleVisible(schema *Schema, state State, id string) (State, []Event, error) {
	if _, ok := schema.Column(id); !ok {
		return state, nil, ErrUnknownColumn
	}
	ids := make([]string, 0, len(state.Visible)+1)
	for _, existing := range schema.ids {
		switch {
		case existing == id && state.IsVisible(id):
		case existing == id, state.IsVisible(existing):
			ids = append(ids, existing)
		}
	}
	next, events := SetVisible(schema, state, ids)
	return next, events, nil
}

func prune(schema *Schema, state State) (State, []Event) {
	state, events := PruneFilters(schema, state)
	if state.Sorter != nil && !schema.fieldVisible(state, state.Sorter.FieldID) {
		events = append(events, Event{Kind: EventSortCleared, FieldID: state.Sorter.FieldID})
		state.Sorter = nil
	}
	return state, events
}

func sameVisible(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if _, ok := b[id]; !ok {
			return false
		}
	}
	return true
}
