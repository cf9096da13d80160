//revive:disable-next-line:var-naming
package util

import (
	"encoding/csv"
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrNoCSVData is returned when the input holds no usable label,value rows.
var ErrNoCSVData = errors.New("csv must contain at least two lines with label,value rows")

// CSVSeries is a single labelled series extracted from CSV text.
type CSVSeries struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// ParseCSVData reads "label,value" rows. Each line is parsed on its own:
// quoted fields are honoured when the line is well formed, otherwise the line
// is split on commas as-is. Rows with an empty label, an empty value or a
// non-numeric value are skipped; extra columns are ignored. Input with fewer
// than two lines, or without any usable row, yields ErrNoCSVData.
func ParseCSVData(text string) (*CSVSeries, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrNoCSVData
	}
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return nil, ErrNoCSVData
	}

	series := &CSVSeries{Labels: []string{}, Data: []float64{}}
	for _, line := range lines {
		fields := splitCSVLine(strings.TrimRight(line, "\r"))
		if len(fields) < 2 {
			continue
		}
		label := strings.TrimSpace(fields[0])
		raw := strings.TrimSpace(fields[1])
		if label == "" || raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			continue
		}
		series.Labels = append(series.Labels, label)
		series.Data = append(series.Data, value)
	}

	if len(series.Labels) == 0 {
		return nil, ErrNoCSVData
	}
	return series, nil
}

func splitCSVLine(line string) []string {
	reader := csv.NewReader(strings.NewReader(line))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	if rec, err := reader.Read(); err == nil && len(rec) >= 2 {
		return rec
	}
	return strings.SplitN(line, ",", 3)
}
