package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bekirdag/gridview/internal/grid"
)

var errNotANumber = errors.New("not a number")

// filterInputState is what a column's filter input currently holds. It
// outlives the editor overlay so reopening shows the previous term.
type filterInputState struct {
	text     string
	checked  bool
	selected map[string]bool
}

func (s *filterInputState) reset() {
	s.text = ""
	s.checked = false
	s.selected = nil
}

type choiceItem struct {
	name     string
	selected bool
}

func (c choiceItem) Title() string {
	if c.selected {
		return "[x] " + c.name
	}
	return "[ ] " + c.name
}
func (c choiceItem) Description() string { return "" }
func (c choiceItem) FilterValue() string { return c.name }

// filterEditor is the overlay that collects one filter term.
type filterEditor struct {
	fieldID string
	header  string
	input   grid.FilterInput
	text    textinput.Model
	checked bool
	choices list.Model
}

func newFilterEditor(column grid.Column, kind grid.Kind, state *filterInputState, s styles) *filterEditor {
	e := &filterEditor{
		fieldID: column.FieldID,
		header:  column.HeaderName,
		input:   column.Filter.InputFor(kind),
	}
	switch e.input {
	case grid.InputCheckbox:
		e.checked = state.checked
	case grid.InputChoices:
		items := make([]list.Item, len(column.Filter.Choices))
		for i, choice := range column.Filter.Choices {
			items[i] = choiceItem{name: choice, selected: state.selected[choice]}
		}
		delegate := list.NewDefaultDelegate()
		delegate.ShowDescription = false
		delegate.SetSpacing(0)
		delegate.Styles.NormalTitle = s.listItem
		delegate.Styles.SelectedTitle = s.listSel
		e.choices = list.New(items, delegate, 40, minInt(len(items)+2, 12))
		e.choices.SetShowTitle(false)
		e.choices.SetShowStatusBar(false)
		e.choices.SetFilteringEnabled(false)
		e.choices.SetShowHelp(false)
		e.choices.SetShowPagination(len(items) > 10)
	default:
		e.text = textinput.New()
		e.text.Prompt = "> "
		e.text.CharLimit = 128
		e.text.SetValue(state.text)
		switch e.input {
		case grid.InputNumber:
			e.text.Placeholder = "exact number"
		case grid.InputRange:
			e.text.Placeholder = "min..max"
		default:
			e.text.Placeholder = "contains"
		}
		e.text.Focus()
	}
	return e
}

func (e *filterEditor) Prompt() string {
	switch e.input {
	case grid.InputChoices:
		return fmt.Sprintf("Select %s:", strings.ToLower(e.header))
	default:
		return fmt.Sprintf("Filter %s", e.header)
	}
}

func (e *filterEditor) Hints() []string {
	switch e.input {
	case grid.InputCheckbox, grid.InputChoices:
		return []string{"space toggle", "enter apply", "esc cancel"}
	default:
		return []string{"enter apply", "empty clears", "esc cancel"}
	}
}

// Update handles keys other than enter and esc.
func (e *filterEditor) Update(msg tea.Msg) tea.Cmd {
	keyMsg, isKey := msg.(tea.KeyMsg)
	switch e.input {
	case grid.InputCheckbox:
		if isKey && keyMsg.String() == " " {
			e.checked = !e.checked
		}
		return nil
	case grid.InputChoices:
		if isKey && keyMsg.String() == " " {
			if item, ok := e.choices.SelectedItem().(choiceItem); ok {
				item.selected = !item.selected
				return e.choices.SetItem(e.choices.Index(), item)
			}
			return nil
		}
		var cmd tea.Cmd
		e.choices, cmd = e.choices.Update(msg)
		return cmd
	default:
		var cmd tea.Cmd
		e.text, cmd = e.text.Update(msg)
		return cmd
	}
}

func (e *filterEditor) View() string {
	switch e.input {
	case grid.InputCheckbox:
		if e.checked {
			return "[x] " + e.header
		}
		return "[ ] " + e.header
	case grid.InputChoices:
		return e.choices.View()
	default:
		return e.text.View()
	}
}

// Term converts the editor content into a filter term and the input state
// that produced it.
func (e *filterEditor) Term() (any, filterInputState, error) {
	switch e.input {
	case grid.InputCheckbox:
		return e.checked, filterInputState{checked: e.checked}, nil
	case grid.InputChoices:
		selected := map[string]bool{}
		var names []string
		for _, item := range e.choices.Items() {
			if choice, ok := item.(choiceItem); ok && choice.selected {
				selected[choice.name] = true
				names = append(names, choice.name)
			}
		}
		if names == nil {
			names = []string{}
		}
		return names, filterInputState{selected: selected}, nil
	case grid.InputNumber:
		raw := strings.TrimSpace(e.text.Value())
		term, err := parseNumberTerm(raw)
		return term, filterInputState{text: raw}, err
	case grid.InputRange:
		raw := strings.TrimSpace(e.text.Value())
		term, err := parseRangeTerm(raw)
		return term, filterInputState{text: raw}, err
	default:
		raw := e.text.Value()
		return raw, filterInputState{text: raw}, nil
	}
}

func parseNumberTerm(raw string) (any, error) {
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", raw, errNotANumber)
	}
	return value, nil
}

// parseRangeTerm reads "min..max"; either side may be empty.
func parseRangeTerm(raw string) (any, error) {
	if raw == "" {
		return nil, nil
	}
	lo, hi, found := strings.Cut(raw, "..")
	if !found {
		hi = lo
	}
	var r grid.Range
	var err error
	if r.Start, err = parseNumberTerm(strings.TrimSpace(lo)); err != nil {
		return nil, err
	}
	if r.End, err = parseNumberTerm(strings.TrimSpace(hi)); err != nil {
		return nil, err
	}
	return r, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
