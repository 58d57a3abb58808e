package catalog

import (
	"reflect"
	"testing"
)

// TestVisiblePages проверяет окна видимых страниц для всех ветвей.
func TestVisiblePages(t *testing.T) {
	e := PageEllipsis

	cases := []struct {
		name        string
		totalPages  int
		currentPage int
		want        []int
	}{
		{"одна страница", 1, 1, []int{1}},
		{"пять страниц — все видимы", 5, 3, []int{1, 2, 3, 4, 5}},
		{"начало диапазона", 10, 1, []int{1, 2, 3, 4, e, 10}},
		{"граница начала (page=3)", 10, 3, []int{1, 2, 3, 4, e, 10}},
		{"середина диапазона", 10, 5, []int{1, e, 4, 5, 6, e, 10}},
		{"граница конца (page=8)", 10, 8, []int{1, e, 7, 8, 9, 10}},
		{"конец диапазона", 10, 10, []int{1, e, 7, 8, 9, 10}},
		{"шесть страниц, середина", 6, 4, []int{1, e, 3, 4, 5, 6}},
		{"page вне диапазона сверху", 10, 42, []int{1, e, 7, 8, 9, 10}},
		{"page вне диапазона снизу", 10, 0, []int{1, 2, 3, 4, e, 10}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := VisiblePages(tc.totalPages, tc.currentPage)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("VisiblePages(%d, %d) = %v, ожидался %v",
					tc.totalPages, tc.currentPage, got, tc.want)
			}
		})
	}
}

// TestVisiblePages_NoTotal проверяет вырожденный вход.
func TestVisiblePages_NoTotal(t *testing.T) {
	if got := VisiblePages(0, 1); got != nil {
		t.Errorf("VisiblePages(0, 1) = %v, ожидался nil", got)
	}
}
