package grid

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

func TestSortCycle_RestoresFilteredOrder(t *testing.T) {
	g := newTestGrid(t)
	original := ids(g.View().Rows)

	require.NoError(t, g.SetSort("employees", OrderAsc))
	assert.Equal(t, []int{2, 4, 3, 1}, ids(g.View().Rows))

	require.NoError(t, g.SetSort("employees", OrderDesc))
	assert.Equal(t, []int{1, 3, 2, 4}, ids(g.View().Rows))

	require.NoError(t, g.SetSort("employees", OrderNone))
	assert.Equal(t, original, ids(g.View().Rows))
	assert.Nil(t, g.View().Sorter)
}

func TestSort_StableForEqualKeys(t *testing.T) {
	g := newTestGrid(t)
	require.NoError(t, g.SetSort("employees", OrderAsc))
	rows := ids(g.View().Rows)
	// beta(2) and acorn(4) share 40 employees and keep their input order.
	assert.Equal(t, []int{2, 4}, rows[:2])

	require.NoError(t, g.SetSort("employees", OrderDesc))
	rows = ids(g.View().Rows)
	assert.Equal(t, []int{2, 4}, rows[2:])
}

func TestSort_LocaleAwareStrings(t *testing.T) {
	g := newTestGrid(t)
	require.NoError(t, g.SetSort("name", OrderAsc))
	// byte order would put upper case first; collation does not.
	assert.Equal(t, []int{1, 4, 2, 3}, ids(g.View().Rows))

	require.NoError(t, g.SetSort("name", OrderDesc))
	assert.Equal(t, []int{3, 2, 4, 1}, ids(g.View().Rows))
}

func TestSort_MissingStringIsEmpty(t *testing.T) {
	cmp := stringComparator("name", collate.New(language.Und))
	assert.Less(t, cmp(Row{}, Row{"name": "a"}, OrderAsc), 0)
	assert.Greater(t, cmp(Row{}, Row{"name": "a"}, OrderDesc), 0)
	assert.Equal(t, 0, cmp(Row{"name": nil}, Row{}, OrderAsc))
}

func TestSort_NumbersWithMissingValues(t *testing.T) {
	rows := []Row{{"id": 1, "n": 3}, {"id": 2}, {"id": 3, "n": 1.5}, {"id": 4, "n": nil}}
	cmp := numberComparator("n")

	asc := ApplySort(rows, &ActiveSorter{FieldID: "n", Order: OrderAsc, Comparator: cmp})
	assert.Equal(t, []int{2, 4, 3, 1}, ids(asc))

	desc := ApplySort(rows, &ActiveSorter{FieldID: "n", Order: OrderDesc, Comparator: cmp})
	assert.Equal(t, []int{1, 3, 2, 4}, ids(desc))
}

func TestSort_Booleans(t *testing.T) {
	g := newTestGrid(t)
	require.NoError(t, g.SetSort("active", OrderAsc))
	assert.Equal(t, []int{2, 1, 3, 4}, ids(g.View().Rows))
}

func TestApplySort_PermutationOfInput(t *testing.T) {
	rows := companyRows()
	sorted := ApplySort(rows, &ActiveSorter{FieldID: "employees", Order: OrderAsc, Comparator: numberComparator("employees")})
	require.Len(t, sorted, len(rows))
	assert.False(t, sameSlice(rows, sorted), "sorting must produce a new slice")

	got := make([]uintptr, len(sorted))
	want := make([]uintptr, len(rows))
	for i := range rows {
		got[i] = rowIdentity(sorted[i])
		want[i] = rowIdentity(rows[i])
	}
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	assert.Equal(t, want, got)
	assert.Equal(t, []int{1, 2, 3, 4}, ids(rows), "input order must not change")
}

func TestApplySort_IdentityWithoutSorter(t *testing.T) {
	rows := companyRows()
	assert.True(t, sameSlice(rows, ApplySort(rows, nil)))
	assert.True(t, sameSlice(rows, ApplySort(rows, &ActiveSorter{FieldID: "x", Order: OrderAsc})))
}

func TestSingleActiveSorter(t *testing.T) {
	g := newTestGrid(t)
	require.NoError(t, g.SetSort("name", OrderAsc))
	require.NoError(t, g.SetSort("employees", OrderDesc))

	state := g.State()
	require.NotNil(t, state.Sorter)
	assert.Equal(t, "employees", state.Sorter.FieldID)
	assert.Equal(t, OrderNone, state.OrderOf("name"))
	assert.Equal(t, OrderDesc, state.OrderOf("employees"))
}

func TestCycleSort(t *testing.T) {
	g := newTestGrid(t)
	var seen []SortOrder
	for i := 0; i < 4; i++ {
		order, err := g.CycleSort("country")
		require.NoError(t, err)
		seen = append(seen, order)
	}
	assert.Equal(t, []SortOrder{OrderAsc, OrderDesc, OrderNone, OrderAsc}, seen)

	order, err := g.CycleSort("name")
	require.NoError(t, err)
	assert.Equal(t, OrderAsc, order)
	assert.Equal(t, OrderNone, g.State().OrderOf("country"))
}

func TestChangeSort_Errors(t *testing.T) {
	schema, err := NewSchema([]Column{
		{FieldID: "a", HeaderName: "A", Sort: AutoSort()},
		{FieldID: "b", HeaderName: "B"},
	}, []Row{{"a": "x", "b": "y"}}, nil)
	require.NoError(t, err)
	state := InitialState(schema)

	_, err = ChangeSort(schema, state, "b", OrderAsc)
	assert.True(t, errors.Is(err, ErrUnknownField))

	_, err = ChangeSort(schema, state, "missing", OrderAsc)
	assert.True(t, errors.Is(err, ErrUnknownField))

	_, err = ChangeSort(schema, state, "a", SortOrder("UP"))
	assert.Error(t, err)
}

func TestCustomComparatorReceivesOrder(t *testing.T) {
	var orders []SortOrder
	byLength := func(a, b Row, order SortOrder) int {
		orders = append(orders, order)
		d := len(a["name"].(string)) - len(b["name"].(string))
		if order == OrderDesc {
			return -d
		}
		return d
	}
	g, err := New([]Column{{FieldID: "name", HeaderName: "Name", Sort: &SortSpec{Comparator: byLength}}}, companyRows())
	require.NoError(t, err)

	require.NoError(t, g.SetSort("name", OrderDesc))
	assert.Equal(t, "Cobalt", g.View().Rows[0]["name"])
	require.NotEmpty(t, orders)
	for _, o := range orders {
		assert.Equal(t, OrderDesc, o)
	}
}

func TestNextOrder(t *testing.T) {
	assert.Equal(t, OrderAsc, NextOrder(OrderNone))
	assert.Equal(t, OrderDesc, NextOrder(OrderAsc))
	assert.Equal(t, OrderNone, NextOrder(OrderDesc))
}
