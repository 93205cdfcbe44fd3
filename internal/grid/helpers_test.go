package grid

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

func companyRows() []Row {
	return []Row{
		{"id": 1, "name": "Acme", "country": "Germany", "employees": 120, "active": true},
		{"id": 2, "name": "beta", "country": "France", "employees": 40, "active": false},
		{"id": 3, "name": "Cobalt", "country": "Germany", "employees": 75, "active": true},
		{"id": 4, "name": "acorn", "country": "Spain", "employees": 40, "active": true},
	}
}

func companyColumns() []Column {
	return []Column{
		{FieldID: "name", HeaderName: "Company", Width: 2, Filter: AutoFilter(), Sort: AutoSort()},
		{FieldID: "country", HeaderName: "Country", Type: KindString, Filter: AutoFilter(), Sort: AutoSort()},
		{FieldID: "employees", HeaderName: "Employees", Filter: AutoFilter(), Sort: AutoSort()},
		{FieldID: "active", HeaderName: "Active", Filter: AutoFilter(), Sort: AutoSort()},
	}
}

func newTestGrid(t *testing.T) *Grid {
	t.Helper()
	g, err := New(companyColumns(), companyRows())
	require.NoError(t, err)
	return g
}

func ids(rows []Row) []int {
	out := make([]int, len(rows))
	for i, row := range rows {
		out[i] = row["id"].(int)
	}
	return out
}

func sameSlice(a, b []Row) bool {
	if len(a) == 0 || len(b) == 0 {
		return len(a) == len(b)
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer() && len(a) == len(b)
}

func rowIdentity(r Row) uintptr {
	return reflect.ValueOf(r).Pointer()
}
