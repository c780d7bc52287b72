package order

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrderBy_WhitelistsSortColumns(t *testing.T) {
	tests := []struct {
		name string
		opts ListOptions
		want string
	}{
		{"defaults", ListOptions{}, "created_at DESC"},
		{"total ascending", ListOptions{Sort: "total", Order: "asc"}, "total ASC"},
		{"status descending", ListOptions{Sort: "status"}, "status DESC"},
		{"created_at explicit", ListOptions{Sort: "created_at", Order: "asc"}, "created_at ASC"},
		{"unknown column falls back", ListOptions{Sort: "user_id; DROP TABLE orders"}, "created_at DESC"},
		{"unknown direction falls back", ListOptions{Sort: "total", Order: "sideways"}, "total DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, orderBy(tt.opts))
		})
	}
}
