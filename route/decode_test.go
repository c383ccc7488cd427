package route

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	testCases := []struct {
		name     string
		doc      string
		selector string
		want     []string
		wantErr  bool
	}{
		{
			name: "top level array",
			doc:  `[{"routeId":"R1","year":2025},{"routeId":"R2","year":2025}]`,
			want: []string{"R1", "R2"},
		},
		{
			name:     "nested array",
			doc:      `{"routes":[{"routeId":"R1","year":2025}]}`,
			selector: "$.routes",
			want:     []string{"R1"},
		},
		{
			name:     "wildcard",
			doc:      `{"routes":[{"routeId":"R1","year":2025},{"routeId":"R2","year":2024}]}`,
			selector: "$.routes[*]",
			want:     []string{"R1", "R2"},
		},
		{
			name:     "filter expression",
			doc:      `{"routes":[{"routeId":"R1","year":2025},{"routeId":"R2","year":2024}]}`,
			selector: "$.routes[?(@.year == 2024)]",
			want:     []string{"R2"},
		},
		{
			name:     "single object",
			doc:      `{"route":{"routeId":"R1","year":2025}}`,
			selector: "$.route",
			want:     []string{"R1"},
		},
		{name: "invalid json", doc: `{`, wantErr: true},
		{name: "missing id", doc: `[{"year":2025}]`, wantErr: true},
		{name: "missing year", doc: `[{"routeId":"R1"}]`, wantErr: true},
		{name: "not routes", doc: `{"routes":42}`, selector: "$.routes", wantErr: true},
		{name: "bad selector", doc: `{}`, selector: "$.missing", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			routes, err := Decode(strings.NewReader(tc.doc), tc.selector)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			var ids []string
			for _, r := range routes {
				ids = append(ids, r.RouteID)
			}
			assert.Equal(t, tc.want, ids)
		})
	}
}
