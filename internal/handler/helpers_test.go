package handler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name  string
		total int
		page  int
		limit int
		pages int
	}{
		{"no results", 0, 1, 20, 0},
		{"single partial page", 5, 1, 20, 1},
		{"exact multiple of limit", 40, 2, 20, 2},
		{"one past a full page", 41, 3, 20, 3},
		{"limit of one", 3, 3, 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPagination(tt.total, tt.page, tt.limit)
			require.Equal(t, tt.total, p.Total)
			require.Equal(t, tt.page, p.Page)
			require.Equal(t, tt.limit, p.Limit)
			require.Equal(t, tt.pages, p.Pages)
		})
	}
}
