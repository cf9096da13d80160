//revive:disable-next-line:var-naming
package util

import (
	"github.com/clonos/dashboard-backend/model"
	"github.com/google/uuid"
)

// Grid geometry used when laying out template widgets.
const (
	GridColumns    = 12
	templateWidth  = 6
	templateHeight = 4
)

// TemplateChart is one chart slot of a dashboard template.
type TemplateChart struct {
	Type   model.ChartType `json:"type"`
	Title  string          `json:"title"`
	Source string          `json:"data"`
}

// DashboardTemplate is a predefined set of charts that can be turned into a dashboard.
type DashboardTemplate struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Theme       string          `json:"colorTheme"`
	Charts      []TemplateChart `json:"charts"`
}

// Templates is the catalogue of asset dashboard templates.
var Templates = []DashboardTemplate{
	{
		ID:          "asset-overview",
		Name:        "Asset Overview",
		Description: "Complete asset status dashboard",
		Theme:       "Ocean",
		Charts: []TemplateChart{
			{Type: model.ChartPie, Title: "Asset Status Distribution", Source: "asset_status"},
			{Type: model.ChartBar, Title: "Assets by Location", Source: "asset_location"},
			{Type: model.ChartLine, Title: "Asset Utilization Trend", Source: "utilization_trend"},
		},
	},
	{
		ID:          "maintenance-tracker",
		Name:        "Maintenance Tracker",
		Description: "Track maintenance schedules and costs",
		Theme:       "Sunset",
		Charts: []TemplateChart{
			{Type: model.ChartBar, Title: "Maintenance Costs by Month", Source: "maintenance_costs"},
			{Type: model.ChartDoughnut, Title: "Maintenance Types", Source: "maintenance_types"},
			{Type: model.ChartLine, Title: "Downtime Trends", Source: "downtime_data"},
		},
	},
	{
		ID:          "performance-monitor",
		Name:        "Performance Monitor",
		Description: "Real-time asset performance metrics",
		Theme:       "Purple",
		Charts: []TemplateChart{
			{Type: model.ChartLine, Title: "Performance Metrics", Source: "performance_data"},
			{Type: model.ChartRadar, Title: "Asset Health Score", Source: "health_metrics"},
			{Type: model.ChartBar, Title: "Efficiency Ratings", Source: "efficiency_data"},
		},
	},
	{
		ID:          "energy-consumption",
		Name:        "Energy Consumption",
		Description: "Monitor energy usage and costs",
		Theme:       "Forest",
		Charts: []TemplateChart{
			{Type: model.ChartLine, Title: "Energy Consumption Trend", Source: "energy_usage"},
			{Type: model.ChartPie, Title: "Energy by Asset Type", Source: "energy_by_type"},
			{Type: model.ChartBar, Title: "Monthly Energy Costs", Source: "energy_costs"},
		},
	},
}

var months = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}

// templateSources holds the demo series behind each template chart.
var templateSources = map[string]SampleChart{
	"asset_status":      {Labels: []string{"Operational", "Maintenance", "Idle", "Retired"}, Datasets: []model.Dataset{model.NumericDataset("Assets", 812, 143, 226, 66)}},
	"asset_location":    {Labels: []string{"Plant A", "Plant B", "Warehouse", "Field"}, Datasets: []model.Dataset{model.NumericDataset("Assets", 420, 365, 198, 264)}},
	"utilization_trend": {Labels: months, Datasets: []model.Dataset{model.NumericDataset("Utilization %", 78, 81, 84, 83, 86, 87)}},
	"maintenance_costs": {Labels: months, Datasets: []model.Dataset{model.NumericDataset("Cost", 48200, 51300, 46900, 44100, 47800, 45230)}},
	"maintenance_types": {Labels: []string{"Preventive", "Corrective", "Predictive", "Emergency"}, Datasets: []model.Dataset{model.NumericDataset("Work Orders", 52, 28, 14, 6)}},
	"downtime_data":     {Labels: months, Datasets: []model.Dataset{model.NumericDataset("Downtime Hours", 118, 131, 124, 109, 123, 142)}},
	"performance_data":  {Labels: months, Datasets: []model.Dataset{model.NumericDataset("Throughput", 910, 945, 980, 962, 1010, 1034)}},
	"health_metrics":    {Labels: []string{"Vibration", "Temperature", "Pressure", "Lubrication", "Alignment"}, Datasets: []model.Dataset{model.NumericDataset("Health", 8, 7, 9, 6, 8)}},
	"efficiency_data":   {Labels: []string{"Line 1", "Line 2", "Line 3", "Line 4"}, Datasets: []model.Dataset{model.NumericDataset("Efficiency %", 91, 87, 78, 84)}},
	"energy_usage":      {Labels: months, Datasets: []model.Dataset{model.NumericDataset("kWh", 32100, 30400, 28800, 27500, 29900, 33200)}},
	"energy_by_type":    {Labels: []string{"HVAC", "Motors", "Lighting", "Compressors"}, Datasets: []model.Dataset{model.NumericDataset("Share", 38, 31, 12, 19)}},
	"energy_costs":      {Labels: months, Datasets: []model.Dataset{model.NumericDataset("Cost", 4815, 4560, 4320, 4125, 4485, 4980)}},
}

// FindTemplate looks a template up by id.
func FindTemplate(id string) (DashboardTemplate, bool) {
	for _, t := range Templates {
		if t.ID == id {
			return t, true
		}
	}
	return DashboardTemplate{}, false
}

// BuildFromTemplate turns a template into an unsaved dashboard. Widgets are
// placed two per row on the grid, in template order.
func BuildFromTemplate(t DashboardTemplate, name, userID string) *model.Dashboard {
	if name == "" {
		name = t.Name
	}
	d := model.NewDashboard(name, t.Description, userID)

	perRow := GridColumns / templateWidth
	for i, tc := range t.Charts {
		id := "widget-" + uuid.NewString()
		chart := templateChart(tc, t.Theme)
		chart.ID = id

		d.Widgets[id] = chart
		d.Layout = append(d.Layout, model.LayoutItem{
			I: id,
			X: (i % perRow) * templateWidth,
			Y: (i / perRow) * templateHeight,
			W: templateWidth,
			H: templateHeight,
		})
	}
	return d
}

func templateChart(tc TemplateChart, theme string) model.ChartData {
	src, ok := templateSources[tc.Source]
	if !ok {
		src = SampleData(tc.Type)
	}
	borderWidth := 2.0

	datasets := make([]model.Dataset, len(src.Datasets))
	for i, ds := range src.Datasets {
		ds = ds.Clone()
		bgCount := 1
		if tc.Type.IsCircular() {
			bgCount = len(src.Labels)
		}
		ds.BackgroundColor = model.ColorList(ThemeColors(theme, bgCount)...)
		ds.BorderColor = model.SingleColor(ThemeColors(theme, 1)[0])
		ds.BorderWidth = &borderWidth
		datasets[i] = ds
	}

	return model.ChartData{
		Type:       tc.Type,
		Title:      tc.Title,
		Labels:     append([]string(nil), src.Labels...),
		Datasets:   datasets,
		ColorTheme: theme,
	}
}
