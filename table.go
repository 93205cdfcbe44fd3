package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bekirdag/gridview/internal/grid"
)

const (
	sortAscMarker  = "▲"
	sortDescMarker = "▼"
	filterMarker   = "*"
	focusMarker    = "›"
)

// gridTable renders the composed grid view with bubbles/table.
type gridTable struct {
	table  table.Model
	width  int
	height int
	rows   []grid.Row
	fields []string
	focus  int
}

func newGridTable(s styles) *gridTable {
	model := table.New(
		table.WithFocused(true),
		table.WithHeight(10),
	)
	tStyles := table.DefaultStyles()
	tStyles.Header = s.header.Copy().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(palette.border).
		BorderBottom(true)
	tStyles.Cell = s.cell
	tStyles.Selected = s.selected
	model.SetStyles(tStyles)
	return &gridTable{table: model}
}

func (t *gridTable) SetSize(width, height int) {
	if width < 20 {
		width = 20
	}
	if height < 5 {
		height = 5
	}
	t.width = width
	t.height = height
	t.table.SetWidth(width - 2)
	t.table.SetHeight(height - 4)
}

// Sync rebuilds headers and cells from the grid's current view.
func (t *gridTable) Sync(g *grid.Grid, view grid.View) {
	schema := g.Schema()
	state := g.State()
	layout := g.Layout(t.width - 2)

	if t.focus >= len(layout) {
		t.focus = maxInt(len(layout)-1, 0)
	}
	t.fields = t.fields[:0]
	columns := make([]table.Column, len(layout))
	for i, lw := range layout {
		t.fields = append(t.fields, lw.FieldID)
		columns[i] = table.Column{
			Title: headerLabel(lw.Header, state.OrderOf(lw.FieldID), hasFilter(state, lw.FieldID), i == t.focus),
			Width: maxInt(lw.Width-2, 1),
		}
	}

	rows := make([]table.Row, len(view.Rows))
	for i, row := range view.Rows {
		cells := make(table.Row, len(layout))
		for j, lw := range layout {
			if column, ok := schema.Column(lw.ID); ok {
				cells[j] = column.Cell(row)
			}
		}
		rows[i] = cells
	}
	t.rows = view.Rows

	// rows must be cleared before columns shrink or the table indexes past them
	t.table.SetRows(nil)
	t.table.SetColumns(columns)
	t.table.SetRows(rows)
	// SetCursor on an empty table leaves the cursor at -1
	if len(rows) > 0 {
		if cursor := t.table.Cursor(); cursor < 0 || cursor >= len(rows) {
			t.table.SetCursor(minInt(maxInt(cursor, 0), len(rows)-1))
		}
	}
}

func headerLabel(title string, order grid.SortOrder, filtered, focused bool) string {
	var b strings.Builder
	if focused {
		b.WriteString(focusMarker)
	}
	b.WriteString(title)
	switch order {
	case grid.OrderAsc:
		b.WriteString(sortAscMarker)
	case grid.OrderDesc:
		b.WriteString(sortDescMarker)
	}
	if filtered {
		b.WriteString(filterMarker)
	}
	return b.String()
}

func hasFilter(state grid.State, fieldID string) bool {
	_, ok := state.Filters[fieldID]
	return ok
}

func (t *gridTable) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	t.table, cmd = t.table.Update(msg)
	return cmd
}

func (t *gridTable) View(s styles, title string) string {
	var body string
	if len(t.fields) == 0 {
		body = s.statusHint.Render("All columns are hidden. Press c to pick columns.")
	} else {
		body = t.table.View()
	}
	content := lipgloss.JoinVertical(lipgloss.Left, s.columnTitle.Render(title), body)
	return s.panel.Width(t.width - 2).Render(content)
}

// MoveFocus shifts the focused column by delta, clamped to the visible ones.
func (t *gridTable) MoveFocus(delta int) {
	if len(t.fields) == 0 {
		t.focus = 0
		return
	}
	t.focus += delta
	if t.focus < 0 {
		t.focus = 0
	}
	if t.focus >= len(t.fields) {
		t.focus = len(t.fields) - 1
	}
}

func (t *gridTable) FocusedField() (string, bool) {
	if t.focus < 0 || t.focus >= len(t.fields) {
		return "", false
	}
	return t.fields[t.focus], true
}

func (t *gridTable) SelectedRow() (grid.Row, bool) {
	idx := t.table.Cursor()
	if idx < 0 || idx >= len(t.rows) {
		return nil, false
	}
	return t.rows[idx], true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
