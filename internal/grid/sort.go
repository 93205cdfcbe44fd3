package grid

import (
	"fmt"
	"sort"

	"golang.org/x/text/collate"
)

// DeriveComparators builds the comparator of every sortable column. Custom
// comparators win; otherwise strings compare with collator, numbers by
// difference and booleans with false first. Unknown kinds are omitted.
func DeriveComparators(columns []Column, kinds map[string]Kind, collator *collate.Collator) map[string]Comparator {
	comparators := make(map[string]Comparator)
	for _, column := range columns {
		if column.Sort == nil {
			continue
		}
		if column.Sort.Comparator != nil {
			comparators[column.FieldID] = column.Sort.Comparator
			continue
		}
		switch kinds[column.FieldID] {
		case KindString:
			comparators[column.FieldID] = stringComparator(column.FieldID, collator)
		case KindNumber:
			comparators[column.FieldID] = numberComparator(column.FieldID)
		case KindBoolean:
			comparators[column.FieldID] = boolComparator(column.FieldID)
		}
	}
	return comparators
}

func directed(order SortOrder, cmp int) int {
	if order == OrderDesc {
		return -cmp
	}
	return cmp
}

func stringComparator(fieldID string, collator *collate.Collator) Comparator {
	return func(a, b Row, order SortOrder) int {
		return directed(order, collator.CompareString(stringOf(a[fieldID]), stringOf(b[fieldID])))
	}
}

// Missing numbers order before present ones.
func numberComparator(fieldID string) Comparator {
	return func(a, b Row, order SortOrder) int {
		fa, okA := toFloat(a[fieldID])
		fb, okB := toFloat(b[fieldID])
		var cmp int
		switch {
		case !okA && !okB:
			cmp = 0
		case !okA:
			cmp = -1
		case !okB:
			cmp = 1
		case fa < fb:
			cmp = -1
		case fa > fb:
			cmp = 1
		}
		return directed(order, cmp)
	}
}

func boolComparator(fieldID string) Comparator {
	return func(a, b Row, order SortOrder) int {
		ba, _ := a[fieldID].(bool)
		bb, _ := b[fieldID].(bool)
		var cmp int
		switch {
		case ba == bb:
			cmp = 0
		case bb:
			cmp = -1
		default:
			cmp = 1
		}
		return directed(order, cmp)
	}
}

// ApplySort returns rows stable-sorted by the active sorter, or rows itself
// when nothing applies.
func ApplySort(rows []Row, sorter *ActiveSorter) []Row {
	if sorter == nil || sorter.Comparator == nil || sorter.Order == OrderNone {
		return rows
	}
	out := append([]Row(nil), rows...)
	cmp, order := sorter.Comparator, sorter.Order
	sort.SliceStable(out, func(i, j int) bool {
		return cmp(out[i], out[j], order) < 0
	})
	return out
}

// ChangeSort replaces the active sorter. OrderNone clears it.
func ChangeSort(schema *Schema, state State, fieldID string, order SortOrder) (State, error) {
	column, ok := schema.ColumnByField(fieldID)
	if !ok || column.Sort == nil {
		return state, fmt.Errorf("sort %q: %w", fieldID, ErrUnknownField)
	}
	if order != OrderNone && !schema.fieldVisible(state, fieldID) {
		return state, nil
	}
	switch order {
	case OrderNone:
		state.Sorter = nil
	case OrderAsc, OrderDesc:
		state.Sorter = &ActiveSorter{
			FieldID:    fieldID,
			Order:      order,
			Comparator: schema.Comparator(fieldID),
		}
	default:
		return state, fmt.Errorf("sort %q: invalid order %q", fieldID, order)
	}
	return state, nil
}

// NextOrder is the per-column click cycle: unset, ASC, DES, unset.
func NextOrder(current SortOrder) SortOrder {
	switch current {
	case OrderAsc:
		return OrderDesc
	case OrderDesc:
		return OrderNone
	default:
		return OrderAsc
	}
}

func rebindSorter(schema *Schema, sorter *ActiveSorter) *ActiveSorter {
	if sorter == nil {
		return nil
	}
	column, ok := schema.ColumnByField(sorter.FieldID)
	if !ok || column.Sort == nil {
		return nil
	}
	return &ActiveSorter{
		FieldID:    sorter.FieldID,
		Order:      sorter.Order,
		Comparator: schema.Comparator(sorter.FieldID),
	}
}
