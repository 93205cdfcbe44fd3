// Package grid turns a row collection and a column schema into a filtered,
// sorted view of the visible columns, recomputed as its inputs change.
package grid

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// View is the composed output consumed by a presentation layer.
type View struct {
	Rows               []Row
	CurrentlyShowing   int
	TotalRows          int
	TotalActiveFilters int
	Sorter             *ActiveSorter
	Visible            map[string]string
}

// Option configures a Grid.
type Option func(*Grid)

// WithLogger sets the logger used for recomputation traces.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Grid) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithLocale sets the collation locale of synthesized string comparators.
func WithLocale(tag language.Tag) Option {
	return func(g *Grid) {
		g.locale = tag
	}
}

type generations struct {
	rows    uint64
	filters uint64
	sorter  uint64
}

type memo struct {
	valid bool
	key   generations
	rows  []Row
}

// Grid wires rows through visibility, filtering and sorting. Derived rows are
// recomputed only when one of their inputs changed. A Grid has a single owner
// and is not safe for concurrent use.
type Grid struct {
	logger   *zap.Logger
	locale   language.Tag
	collator *collate.Collator

	schema *Schema
	state  State
	rows   []Row

	gen       generations
	filtered  memo
	sorted    memo
	listeners []func(Event)

	filterRuns int
	sortRuns   int
}

// New builds a grid over columns and rows with every column visible.
func New(columns []Column, rows []Row, opts ...Option) (*Grid, error) {
	g := &Grid{
		logger: zap.NewNop(),
		locale: language.Und,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.collator = collate.New(g.locale)
	schema, err := NewSchema(columns, rows, g.collator)
	if err != nil {
		return nil, err
	}
	g.schema = schema
	g.state = InitialState(schema)
	g.rows = rows
	return g, nil
}

// OnEvent registers a listener for every event the grid emits.
func (g *Grid) OnEvent(fn func(Event)) {
	if fn != nil {
		g.listeners = append(g.listeners, fn)
	}
}

func (g *Grid) Schema() *Schema { return g.schema }

func (g *Grid) State() State { return g.state }

// Rows returns the current row generation.
func (g *Grid) Rows() []Row { return g.rows }

// SetRows installs a new row generation. Predicates and comparators are not
// re-derived; they belong to the column generation.
func (g *Grid) SetRows(rows []Row) {
	g.rows = rows
	g.gen.rows++
	g.logger.Debug("rows replaced", zap.Int("rows", len(rows)))
}

// SetColumns installs a new column generation, re-deriving kinds against the
// current first row. Surviving columns keep their visibility, new ones are
// shown, and filters or the sorter on vanished fields are dropped.
func (g *Grid) SetColumns(columns []Column) error {
	schema, err := NewSchema(columns, g.rows, g.collator)
	if err != nil {
		return err
	}
	prev := g.schema
	visible := make(map[string]string, len(schema.ids))
	for _, id := range schema.ids {
		if _, known := prev.byID[id]; !known || g.state.IsVisible(id) {
			visible[id] = id
		}
	}
	filters, events := rebindFilters(schema, g.state.Filters)
	next := State{
		Visible: visible,
		Filters: filters,
		Sorter:  rebindSorter(schema, g.state.Sorter),
	}
	if g.state.Sorter != nil && next.Sorter == nil {
		events = append(events, Event{Kind: EventSortCleared, FieldID: g.state.Sorter.FieldID})
	}
	next, pruned := prune(schema, next)
	events = append(events, pruned...)
	g.schema = schema
	g.state = next
	g.gen.filters++
	g.gen.sorter++
	g.logger.Debug("columns replaced", zap.Int("columns", len(columns)))
	g.emit(events)
	return nil
}

// SetFilter is the entry point of filter inputs. An empty term removes the
// filter.
func (g *Grid) SetFilter(fieldID string, term any) error {
	next, err := ChangeFilter(g.schema, g.state, fieldID, term)
	if err != nil {
		return err
	}
	g.commitFilters(next)
	return nil
}

// SetSort replaces the single active sorter. OrderNone clears it.
func (g *Grid) SetSort(fieldID string, order SortOrder) error {
	next, err := ChangeSort(g.schema, g.state, fieldID, order)
	if err != nil {
		return err
	}
	g.commitSorter(next)
	return nil
}

// CycleSort advances fieldID through unset, ASC and DES.
func (g *Grid) CycleSort(fieldID string) (SortOrder, error) {
	order := NextOrder(g.state.OrderOf(fieldID))
	if err := g.SetSort(fieldID, order); err != nil {
		return OrderNone, err
	}
	return g.state.OrderOf(fieldID), nil
}

// SetVisible replaces the visible columns by id.
func (g *Grid) SetVisible(ids []string) []Event {
	next, events := SetVisible(g.schema, g.state, ids)
	g.commitVisible(next)
	g.emit(events)
	return events
}

// ToggleVisible flips the visibility of one column.
func (g *Grid) ToggleVisible(id string) ([]Event, error) {
	next, events, err := ToggleVisible(g.schema, g.state, id)
	if err != nil {
		return nil, fmt.Errorf("toggle %q: %w", id, err)
	}
	g.commitVisible(next)
	g.emit(events)
	return events, nil
}

// ClearAllFilters emits one EventFilterCleared per active filter. The filters
// stay until their inputs submit empty terms.
func (g *Grid) ClearAllFilters() []Event {
	events := ClearFilters(g.state)
	g.emit(events)
	return events
}

// EditCell forwards an edit of row to the column's OnEdited hook.
func (g *Grid) EditCell(row Row, fieldID, value string) error {
	column, ok := g.schema.ColumnByField(fieldID)
	if !ok {
		return fmt.Errorf("edit %q: %w", fieldID, ErrUnknownField)
	}
	if !column.Editable || column.OnEdited == nil {
		return fmt.Errorf("edit %q: %w", fieldID, ErrNotEditable)
	}
	return column.OnEdited(row, fieldID, value)
}

// Layout composes the widths of the visible columns.
func (g *Grid) Layout(total int) []ColumnWidth {
	return Layout(g.schema, g.state, total)
}

// View composes the final rows and counters.
func (g *Grid) View() View {
	rows := g.sortedRows()
	var sorter *ActiveSorter
	if g.state.Sorter != nil {
		copied := *g.state.Sorter
		sorter = &copied
	}
	visible := make(map[string]string, len(g.state.Visible))
	for k, v := range g.state.Visible {
		visible[k] = v
	}
	return View{
		Rows:               rows,
		CurrentlyShowing:   len(rows),
		TotalRows:          len(g.rows),
		TotalActiveFilters: len(g.state.Filters),
		Sorter:             sorter,
		Visible:            visible,
	}
}

func (g *Grid) filteredRows() []Row {
	key := generations{rows: g.gen.rows, filters: g.gen.filters}
	if g.filtered.valid && g.filtered.key == key {
		return g.filtered.rows
	}
	g.filterRuns++
	g.filtered = memo{valid: true, key: key, rows: ApplyFilters(g.rows, g.state.Filters)}
	g.logger.Debug("filters applied",
		zap.Int("active", len(g.state.Filters)),
		zap.Int("rows", len(g.rows)),
		zap.Int("matched", len(g.filtered.rows)))
	return g.filtered.rows
}

func (g *Grid) sortedRows() []Row {
	filtered := g.filteredRows()
	key := generations{rows: g.gen.rows, filters: g.gen.filters, sorter: g.gen.sorter}
	if g.sorted.valid && g.sorted.key == key {
		return g.sorted.rows
	}
	g.sortRuns++
	g.sorted = memo{valid: true, key: key, rows: ApplySort(filtered, g.state.Sorter)}
	if g.state.Sorter != nil {
		g.logger.Debug("rows sorted",
			zap.String("field", g.state.Sorter.FieldID),
			zap.String("order", string(g.state.Sorter.Order)))
	}
	return g.sorted.rows
}

func (g *Grid) commitFilters(next State) {
	if !sameFilters(g.state.Filters, next.Filters) {
		g.gen.filters++
	}
	g.state = next
}

func (g *Grid) commitSorter(next State) {
	if !sameSorter(g.state.Sorter, next.Sorter) {
		g.gen.sorter++
	}
	g.state = next
}

func (g *Grid) commitVisible(next State) {
	if !sameFilters(g.state.Filters, next.Filters) {
		g.gen.filters++
	}
	if !sameSorter(g.state.Sorter, next.Sorter) {
		g.gen.sorter++
	}
	if !sameVisible(g.state.Visible, next.Visible) {
		g.logger.Debug("visibility changed", zap.Int("visible", len(next.Visible)))
	}
	g.state = next
}

func (g *Grid) emit(events []Event) {
	for _, ev := range events {
		for _, fn := range g.listeners {
			fn(ev)
		}
	}
}

func sameFilters(a, b map[string]ActiveFilter) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	for field, fa := range a {
		fb, ok := b[field]
		if !ok || !sameTerm(fa.Term, fb.Term) {
			return false
		}
	}
	return true
}

func sameTerm(a, b any) bool {
	switch ta := a.(type) {
	case []string:
		tb, ok := b.([]string)
		if !ok || len(ta) != len(tb) {
			return false
		}
		for i := range ta {
			if ta[i] != tb[i] {
				return false
			}
		}
		return true
	case []any:
		tb, ok := b.([]any)
		if !ok || len(ta) != len(tb) {
			return false
		}
		for i := range ta {
			if !sameTerm(ta[i], tb[i]) {
				return false
			}
		}
		return true
	case Range:
		tb, ok := b.(Range)
		return ok && sameTerm(ta.Start, tb.Start) && sameTerm(ta.End, tb.End)
	case *Range:
		tb, ok := b.(*Range)
		if !ok || ta == nil || tb == nil {
			return ok && ta == tb
		}
		return sameTerm(*ta, *tb)
	case time.Time:
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	case nil:
		return b == nil
	}
	return equalValues(a, b)
}

func sameSorter(a, b *ActiveSorter) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.FieldID == b.FieldID && a.Order == b.Order
}
