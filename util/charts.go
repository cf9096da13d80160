//revive:disable-next-line:var-naming
package util

import (
	"unicode"
	"unicode/utf8"

	"github.com/clonos/dashboard-backend/model"
)

// ChartTypeInfo describes a chart type for the builder's type picker.
type ChartTypeInfo struct {
	Type model.ChartType `json:"type"`
	Name string          `json:"name"`
	Use  string          `json:"use"`
}

// ChartCatalogue lists every chart type with a short usage hint.
var ChartCatalogue = []ChartTypeInfo{
	{Type: model.ChartBar, Name: "Bar Chart", Use: "Compare values across categories"},
	{Type: model.ChartLine, Name: "Line Chart", Use: "Show trends over time"},
	{Type: model.ChartPie, Name: "Pie Chart", Use: "Show proportions of a whole"},
	{Type: model.ChartDoughnut, Name: "Doughnut", Use: "Like pie chart with center space"},
	{Type: model.ChartRadar, Name: "Radar Chart", Use: "Compare multiple metrics"},
	{Type: model.ChartScatter, Name: "Scatter Plot", Use: "Show correlation between two variables"},
}

var (
	defaultLabels = []string{"Jan", "Feb", "Mar", "Apr", "May"}
	defaultValues = []float64{12, 19, 3, 5, 2}
)

// DefaultChartData returns the chart a freshly dropped widget starts with.
func DefaultChartData(chartType model.ChartType, id string) model.ChartData {
	bgCount := 1
	if chartType.IsCircular() {
		bgCount = len(defaultLabels)
	}
	borderWidth := 2.0

	ds := model.NumericDataset("Dataset 1", defaultValues...)
	ds.BackgroundColor = model.ColorList(ThemeColors(DefaultTheme, bgCount)...)
	ds.BorderColor = model.SingleColor(ThemeColors(DefaultTheme, 1)[0])
	ds.BorderWidth = &borderWidth

	return model.ChartData{
		ID:         id,
		Type:       chartType,
		Title:      capitalize(string(chartType)) + " Chart",
		Labels:     append([]string(nil), defaultLabels...),
		Datasets:   []model.Dataset{ds},
		ColorTheme: DefaultTheme,
	}
}

// SampleChart holds the example labels and datasets for one chart type.
type SampleChart struct {
	Labels   []string        `json:"labels"`
	Datasets []model.Dataset `json:"datasets"`
}

func sampleCharts() map[model.ChartType]SampleChart {
	return map[model.ChartType]SampleChart{
		model.ChartBar: {
			Labels:   []string{"Q1", "Q2", "Q3", "Q4"},
			Datasets: []model.Dataset{model.NumericDataset("Revenue", 45000, 52000, 48000, 61000)},
		},
		model.ChartLine: {
			Labels:   []string{"Week 1", "Week 2", "Week 3", "Week 4", "Week 5"},
			Datasets: []model.Dataset{model.NumericDataset("Users", 120, 150, 180, 220, 280)},
		},
		model.ChartPie: {
			Labels:   []string{"Desktop", "Mobile", "Tablet"},
			Datasets: []model.Dataset{model.NumericDataset("Traffic", 55, 35, 10)},
		},
		model.ChartDoughnut: {
			Labels:   []string{"Chrome", "Firefox", "Safari", "Edge"},
			Datasets: []model.Dataset{model.NumericDataset("Browsers", 45, 25, 20, 10)},
		},
		model.ChartRadar: {
			Labels:   []string{"Speed", "Reliability", "Comfort", "Safety", "Efficiency"},
			Datasets: []model.Dataset{model.NumericDataset("Performance", 8, 7, 9, 6, 8)},
		},
		model.ChartScatter: {
			Labels: []string{"Data Points"},
			Datasets: []model.Dataset{{
				Label: "Correlation",
				Data:  []model.DataPoint{model.Point(1, 2), model.Point(2, 4), model.Point(3, 6), model.Point(4, 8)},
			}},
		},
	}
}

// SampleData returns example data for the chart type, falling back to the
// bar sample for unknown types. Each call returns a fresh copy.
func SampleData(chartType model.ChartType) SampleChart {
	samples := sampleCharts()
	if s, ok := samples[chartType]; ok {
		return s
	}
	return samples[model.ChartBar]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
