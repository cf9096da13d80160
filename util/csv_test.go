package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSVData(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		labels []string
		data   []float64
	}{
		{
			name:   "header row is skipped as non numeric",
			input:  "month,sales\nJan,10\nFeb,20.5",
			labels: []string{"Jan", "Feb"},
			data:   []float64{10, 20.5},
		},
		{
			name:   "quoted labels with commas",
			input:  "\"North, East\",5\nSouth,7\n",
			labels: []string{"North, East", "South"},
			data:   []float64{5, 7},
		},
		{
			name:   "extra columns and blanks ignored",
			input:  "a,1,x\n,2\nb,\nc, 3 \nd,NaN\ne,Inf",
			labels: []string{"a", "c"},
			data:   []float64{1, 3},
		},
		{
			name:   "unterminated quote only affects its own line",
			input:  "\"Widgets,10\nGears,20\nBolts,30",
			labels: []string{"\"Widgets", "Gears", "Bolts"},
			data:   []float64{10, 20, 30},
		},
		{
			name:   "malformed line between good rows",
			input:  "a,1\nb\"x,2\n\"c\"d,3\ne,4",
			labels: []string{"a", "b\"x", "\"c\"d", "e"},
			data:   []float64{1, 2, 3, 4},
		},
		{
			name:   "windows line endings",
			input:  "x,1\r\ny,-2\r\n",
			labels: []string{"x", "y"},
			data:   []float64{1, -2},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			series, err := ParseCSVData(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.labels, series.Labels)
			assert.Equal(t, tc.data, series.Data)
		})
	}
}

func TestParseCSVDataRejects(t *testing.T) {
	for _, input := range []string{"", "   \n  ", "only,1", "a,b\nc,d"} {
		_, err := ParseCSVData(input)
		assert.ErrorIs(t, err, ErrNoCSVData, "input %q", input)
	}
}
