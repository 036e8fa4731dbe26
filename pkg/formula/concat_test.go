package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConcat(t *testing.T) {
	tests := []struct {
		name     string
		groups   [][]string
		operator string
		want     string
		ok       bool
	}{
		{
			name:     "single valid group unwrapped",
			groups:   [][]string{{"a", "=", "1"}},
			operator: "AND",
			want:     "a=1",
			ok:       true,
		},
		{
			name:     "invalid group discarded",
			groups:   [][]string{{"a", "=", "1"}, {"", "irrelevant"}},
			operator: "AND",
			want:     "a=1",
			ok:       true,
		},
		{
			name:     "two groups parenthesized",
			groups:   [][]string{{"a", ">", "1"}, {"b", "<", "2"}},
			operator: "&",
			want:     "(a>1)&(b<2)",
			ok:       true,
		},
		{
			name:     "placeholder tokens invalidate",
			groups:   [][]string{{"a", "-", "1"}, {"b", "nan"}, {"c", "None"}},
			operator: "AND",
			ok:       false,
		},
		{
			name:     "element-less group discarded",
			groups:   [][]string{{}, {"a", ">", "0"}},
			operator: "&",
			want:     "a>0",
			ok:       true,
		},
		{
			name:     "no groups means no condition",
			groups:   [][]string{},
			operator: "AND",
			ok:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Concat(tt.groups, tt.operator)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
