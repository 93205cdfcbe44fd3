package main

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bekirdag/gridview/internal/grid"
)

type columnItem struct {
	id      string
	header  string
	visible bool
}

func (c columnItem) Title() string {
	if c.visible {
		return "[x] " + c.header
	}
	return "[ ] " + c.header
}
func (c columnItem) Description() string { return "" }
func (c columnItem) FilterValue() string { return c.header }

// columnPicker lists every column with its visibility.
type columnPicker struct {
	list list.Model
}

func newColumnPicker(schema *grid.Schema, state grid.State, s styles) *columnPicker {
	columns := schema.Columns()
	items := make([]list.Item, len(columns))
	for i, column := range columns {
		items[i] = columnItem{id: column.Key(), header: column.HeaderName, visible: state.IsVisible(column.Key())}
	}
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)
	delegate.Styles.NormalTitle = s.listItem
	delegate.Styles.SelectedTitle = s.listSel

	l := list.New(items, delegate, 40, minInt(len(items)+2, 14))
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowPagination(len(items) > 12)
	return &columnPicker{list: l}
}

// Selected returns the highlighted column id.
func (p *columnPicker) Selected() (string, bool) {
	item, ok := p.list.SelectedItem().(columnItem)
	return item.id, ok
}

// Refresh re-reads visibility after a toggle.
func (p *columnPicker) Refresh(state grid.State) tea.Cmd {
	var cmds []tea.Cmd
	for i, item := range p.list.Items() {
		column, ok := item.(columnItem)
		if !ok {
			continue
		}
		if visible := state.IsVisible(column.id); visible != column.visible {
			column.visible = visible
			cmds = append(cmds, p.list.SetItem(i, column))
		}
	}
	return tea.Batch(cmds...)
}

func (p *columnPicker) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return cmd
}

func (p *columnPicker) View() string { return p.list.View() }
