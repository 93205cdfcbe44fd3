package grid

import "github.com/mattn/go-runewidth"

// indicatorWidth reserves room for the sort arrow and the filter marker.
const indicatorWidth = 2

// ColumnWidth is the width assigned to one visible column.
type ColumnWidth struct {
	ID      string
	FieldID string
	Header  string
	Width   int
}

// Layout composes the widths of the visible columns. Every column gets at
// least its header width; the rest of total is shared by weight and the last
// column absorbs rounding.
func Layout(schema *Schema, state State, total int) []ColumnWidth {
	var (
		out     []ColumnWidth
		weights []int
		minSum  int
		wSum    int
	)
	for _, column := range schema.columns {
		id := column.Key()
		if !state.IsVisible(id) {
			continue
		}
		min := runewidth.StringWidth(column.HeaderName) + indicatorWidth
		weight := column.Width
		if weight <= 0 {
			weight = 1
		}
		out = append(out, ColumnWidth{ID: id, FieldID: column.FieldID, Header: column.HeaderName, Width: min})
		weights = append(weights, weight)
		minSum += min
		wSum += weight
	}
	extra := total - minSum
	if len(out) == 0 || extra <= 0 {
		return out
	}
	given := 0
	for i := range out {
		share := extra * weights[i] / wSum
		if i == len(out)-1 {
			share = extra - given
		}
		out[i].Width += share
		given += share
	}
	return out
}
