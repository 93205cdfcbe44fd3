package grid

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestView_InitialCounters(t *testing.T) {
	g := newTestGrid(t)
	view := g.View()
	assert.Equal(t, 4, view.TotalRows)
	assert.Equal(t, 4, view.CurrentlyShowing)
	assert.Equal(t, 0, view.TotalActiveFilters)
	assert.Nil(t, view.Sorter)
	assert.Len(t, view.Visible, 4)
	assert.True(t, sameSlice(g.Rows(), view.Rows), "no filter and no sort must return the input rows")
}

func TestView_ReturnsCopies(t *testing.T) {
	g := newTestGrid(t)
	require.NoError(t, g.SetSort("name", OrderAsc))

	view := g.View()
	view.Visible["Company"] = "tampered"
	delete(view.Visible, "Country")
	view.Sorter.Order = OrderDesc

	again := g.View()
	assert.Equal(t, "Company", again.Visible["Company"])
	assert.Contains(t, again.Visible, "Country")
	assert.Equal(t, OrderAsc, again.Sorter.Order)
}

func TestMemo_RecomputesOnlyOnInputChange(t *testing.T) {
	g := newTestGrid(t)
	g.View()
	require.Equal(t, 1, g.filterRuns)
	require.Equal(t, 1, g.sortRuns)

	g.View()
	assert.Equal(t, 1, g.filterRuns)
	assert.Equal(t, 1, g.sortRuns)

	t.Run("filter change reruns both stages", func(t *testing.T) {
		require.NoError(t, g.SetFilter("country", "germany"))
		g.View()
		assert.Equal(t, 2, g.filterRuns)
		assert.Equal(t, 2, g.sortRuns)
	})

	t.Run("same term is not a change", func(t *testing.T) {
		require.NoError(t, g.SetFilter("country", "germany"))
		g.View()
		assert.Equal(t, 2, g.filterRuns)
	})

	t.Run("sort change reuses filtered rows", func(t *testing.T) {
		require.NoError(t, g.SetSort("employees", OrderDesc))
		assert.Equal(t, []int{1, 3}, ids(g.View().Rows))
		assert.Equal(t, 2, g.filterRuns)
		assert.Equal(t, 3, g.sortRuns)
	})

	t.Run("hiding an unfiltered unsorted column recomputes nothing", func(t *testing.T) {
		_, err := g.ToggleVisible("Active")
		require.NoError(t, err)
		g.View()
		assert.Equal(t, 2, g.filterRuns)
		assert.Equal(t, 3, g.sortRuns)
	})

	t.Run("clear all only emits", func(t *testing.T) {
		g.ClearAllFilters()
		g.View()
		assert.Equal(t, 2, g.filterRuns)
	})

	t.Run("new rows rerun both stages", func(t *testing.T) {
		g.SetRows(append(companyRows(), Row{"id": 5, "name": "Delta", "country": "Germany", "employees": 300, "active": true}))
		assert.Equal(t, []int{5, 1, 3}, ids(g.View().Rows))
		assert.Equal(t, 3, g.filterRuns)
		assert.Equal(t, 4, g.sortRuns)
		assert.Equal(t, 5, g.View().TotalRows)
	})
}

func TestMemo_SameCompositeTermIsNotAChange(t *testing.T) {
	g := newTestGrid(t)

	require.NoError(t, g.SetFilter("country", []any{"Germany", "Spain"}))
	g.View()
	runs := g.filterRuns
	require.NoError(t, g.SetFilter("country", []any{"Germany", "Spain"}))
	g.View()
	assert.Equal(t, runs, g.filterRuns)

	require.NoError(t, g.SetFilter("employees", &Range{Start: 40, End: 100}))
	g.View()
	runs = g.filterRuns
	require.NoError(t, g.SetFilter("employees", &Range{Start: 40, End: 100}))
	g.View()
	assert.Equal(t, runs, g.filterRuns)

	require.NoError(t, g.SetFilter("employees", &Range{Start: 40, End: 120}))
	g.View()
	assert.Equal(t, runs+1, g.filterRuns)
}

func TestSetRows_KeepsDerivedFunctions(t *testing.T) {
	g, err := New(companyColumns(), nil)
	require.NoError(t, err)
	assert.Equal(t, KindString, g.Schema().Kind("country"))
	assert.Equal(t, KindUnknown, g.Schema().Kind("name"))

	g.SetRows(companyRows())
	assert.Equal(t, KindUnknown, g.Schema().Kind("name"))

	require.NoError(t, g.SetColumns(companyColumns()))
	assert.Equal(t, KindString, g.Schema().Kind("name"))
	assert.Equal(t, KindNumber, g.Schema().Kind("employees"))
}

func TestSetColumns_KeepsStateOfSurvivingColumns(t *testing.T) {
	g := newTestGrid(t)
	require.NoError(t, g.SetFilter("name", "ac"))
	require.NoError(t, g.SetFilter("country", "spain"))
	require.NoError(t, g.SetSort("employees", OrderAsc))
	_, err := g.ToggleVisible("Active")
	require.NoError(t, err)

	var events []Event
	g.OnEvent(func(ev Event) { events = append(events, ev) })

	next := []Column{
		companyColumns()[0],
		companyColumns()[2],
		companyColumns()[3],
		{FieldID: "city", HeaderName: "City", Type: KindString, Filter: AutoFilter()},
	}
	require.NoError(t, g.SetColumns(next))

	assert.Equal(t, []Event{{Kind: EventFilterDropped, FieldID: "country"}}, events)
	state := g.State()
	assert.True(t, state.IsVisible("City"))
	assert.False(t, state.IsVisible("Active"))
	assert.Equal(t, []string{"name"}, state.FilterFields())
	assert.Equal(t, OrderAsc, state.OrderOf("employees"))
	assert.Equal(t, []int{4, 1}, ids(g.View().Rows))
}

func TestSetColumns_RejectsDuplicates(t *testing.T) {
	g := newTestGrid(t)
	err := g.SetColumns([]Column{{FieldID: "a", HeaderName: "A"}, {FieldID: "b", HeaderName: "A"}})
	assert.True(t, errors.Is(err, ErrDuplicateColumn))
	assert.Equal(t, []string{"Company", "Country", "Employees", "Active"}, g.Schema().IDs())
}

func TestEditCell(t *testing.T) {
	type edit struct {
		id    int
		field string
		value string
	}
	var edits []edit
	columns := companyColumns()
	columns[0].Editable = true
	columns[0].OnEdited = func(row Row, fieldID, value string) error {
		edits = append(edits, edit{row["id"].(int), fieldID, value})
		return nil
	}
	columns[1].Editable = true
	columns[1].OnEdited = func(Row, string, string) error { return errors.New("read only backend") }

	g, err := New(columns, companyRows())
	require.NoError(t, err)
	row := g.View().Rows[1]

	require.NoError(t, g.EditCell(row, "name", "Beta GmbH"))
	assert.Equal(t, []edit{{2, "name", "Beta GmbH"}}, edits)

	assert.EqualError(t, g.EditCell(row, "country", "x"), "read only backend")
	assert.True(t, errors.Is(g.EditCell(row, "employees", "1"), ErrNotEditable))
	assert.True(t, errors.Is(g.EditCell(row, "missing", "1"), ErrUnknownField))
}

func TestWithLogger_TracesRecomputation(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	g, err := New(companyColumns(), companyRows(), WithLogger(zap.New(core)))
	require.NoError(t, err)

	require.NoError(t, g.SetFilter("name", "ac"))
	require.NoError(t, g.SetSort("name", OrderAsc))
	g.View()

	applied := logs.FilterMessage("filters applied").All()
	require.Len(t, applied, 1)
	assert.Equal(t, int64(2), applied[0].ContextMap()["matched"])
	assert.Equal(t, 1, logs.FilterMessage("rows sorted").Len())
}
