package services

import "testing"

func TestPageBounds(t *testing.T) {
	cases := []struct {
		name       string
		total      int
		pageSize   int
		page       int
		start, end int
		totalPages int
		current    int
	}{
		{"first page", 25, 10, 1, 0, 10, 3, 1},
		{"middle page", 25, 10, 2, 10, 20, 3, 2},
		{"short last page", 25, 10, 3, 20, 25, 3, 3},
		{"page past end clamps", 25, 10, 9, 20, 25, 3, 3},
		{"page zero clamps to first", 25, 10, 0, 0, 10, 3, 1},
		{"negative page clamps", 25, 10, -2, 0, 10, 3, 1},
		{"empty list", 0, 10, 1, 0, 0, 1, 1},
		{"exact multiple", 20, 10, 2, 10, 20, 2, 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end, totalPages, current := pageBounds(tc.total, tc.pageSize, tc.page)
			if start != tc.start || end != tc.end || totalPages != tc.totalPages || current != tc.current {
				t.Errorf("pageBounds(%d,%d,%d) = (%d,%d,%d,%d), want (%d,%d,%d,%d)",
					tc.total, tc.pageSize, tc.page,
					start, end, totalPages, current,
					tc.start, tc.end, tc.totalPages, tc.current)
			}
		})
	}
}
