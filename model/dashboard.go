// Package model defines the data structures persisted and served by the dashboard backend.
package model

import (
	"time"
)

// DefaultUserID owns dashboards created without an explicit or authenticated user.
const DefaultUserID = "default-user"

// ChartType selects how a widget is rendered by the charting library.
type ChartType string

// Supported chart types
const (
	ChartBar      ChartType = "bar"
	ChartLine     ChartType = "line"
	ChartPie      ChartType = "pie"
	ChartDoughnut ChartType = "doughnut"
	ChartRadar    ChartType = "radar"
	ChartScatter  ChartType = "scatter"
)

// ChartTypes lists every supported chart type in display order.
var ChartTypes = []ChartType{ChartBar, ChartLine, ChartPie, ChartDoughnut, ChartRadar, ChartScatter}

// Valid reports whether t is one of the supported chart types.
func (t ChartType) Valid() bool {
	for _, ct := range ChartTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// IsCircular is true for chart types that color each label separately.
func (t ChartType) IsCircular() bool {
	return t == ChartPie || t == ChartDoughnut
}

// Dashboard is a named collection of chart widgets plus their grid positions.
type Dashboard struct {
	ID          string               `json:"_id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Layout      []LayoutItem         `json:"layout"`
	Widgets     map[string]ChartData `json:"widgets"`
	UserID      string               `json:"userId"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// DashboardSummary is the list view of a dashboard; widgets are left out.
type DashboardSummary struct {
	ID          string       `json:"_id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Layout      []LayoutItem `json:"layout"`
	UserID      string       `json:"userId"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Summary returns the list view of d.
func (d *Dashboard) Summary() DashboardSummary {
	return DashboardSummary{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Layout:      d.Layout,
		UserID:      d.UserID,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// Now returns the current UTC time at the millisecond precision every store keeps.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// NewDashboard creates a dashboard with empty layout and widgets for the given owner.
func NewDashboard(name, description, userID string) *Dashboard {
	if userID == "" {
		userID = DefaultUserID
	}
	now := Now()
	return &Dashboard{
		Name:        name,
		Description: description,
		Layout:      []LayoutItem{},
		Widgets:     map[string]ChartData{},
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Touch refreshes the update timestamp and fills nil collections.
func (d *Dashboard) Touch() {
	d.UpdatedAt = Now()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = d.UpdatedAt
	}
	if d.Layout == nil {
		d.Layout = []LayoutItem{}
	}
	if d.Widgets == nil {
		d.Widgets = map[string]ChartData{}
	}
}

// Clone returns a deep copy of the dashboard without its ID.
func (d *Dashboard) Clone() *Dashboard {
	c := &Dashboard{
		Name:        d.Name,
		Description: d.Description,
		UserID:      d.UserID,
		Layout:      make([]LayoutItem, len(d.Layout)),
		Widgets:     make(map[string]ChartData, len(d.Widgets)),
	}
	copy(c.Layout, d.Layout)
	for k, w := range d.Widgets {
		c.Widgets[k] = w.Clone()
	}
	return c
}

// LayoutItem is one grid cell assignment as understood by the grid layout library.
type LayoutItem struct {
	I      string `json:"i" bson:"i" validate:"required"`
	X      int    `json:"x" bson:"x" validate:"gte=0"`
	Y      int    `json:"y" bson:"y" validate:"gte=0"`
	W      int    `json:"w" bson:"w" validate:"gte=1"`
	H      int    `json:"h" bson:"h" validate:"gte=1"`
	MinW   *int   `json:"minW,omitempty" bson:"minW,omitempty" validate:"omitempty,gte=1"`
	MinH   *int   `json:"minH,omitempty" bson:"minH,omitempty" validate:"omitempty,gte=1"`
	MaxW   *int   `json:"maxW,omitempty" bson:"maxW,omitempty" validate:"omitempty,gte=1"`
	MaxH   *int   `json:"maxH,omitempty" bson:"maxH,omitempty" validate:"omitempty,gte=1"`
	Static bool   `json:"static,omitempty" bson:"static,omitempty"`
}

// ChartData is a single widget definition.
type ChartData struct {
	ID         string    `json:"id" bson:"id"`
	Type       ChartType `json:"type" bson:"type" validate:"required,charttype"`
	Title      string    `json:"title" bson:"title"`
	Labels     []string  `json:"labels" bson:"labels"`
	Datasets   []Dataset `json:"datasets" bson:"datasets" validate:"dive"`
	ColorTheme string    `json:"colorTheme,omitempty" bson:"colorTheme,omitempty"`
}

// Clone returns a deep copy of the chart.
func (c ChartData) Clone() ChartData {
	out := c
	out.Labels = append([]string(nil), c.Labels...)
	out.Datasets = make([]Dataset, len(c.Datasets))
	for i, ds := range c.Datasets {
		out.Datasets[i] = ds.Clone()
	}
	return out
}

// Dataset is one numeric series of a chart.
type Dataset struct {
	Label           string      `json:"label" bson:"label"`
	Data            []DataPoint `json:"data" bson:"data"`
	BackgroundColor *ColorSpec  `json:"backgroundColor,omitempty" bson:"backgroundColor,omitempty"`
	BorderColor     *ColorSpec  `json:"borderColor,omitempty" bson:"borderColor,omitempty"`
	BorderWidth     *float64    `json:"borderWidth,omitempty" bson:"borderWidth,omitempty" validate:"omitempty,gte=0"`
}

// Clone returns a deep copy of the dataset.
func (d Dataset) Clone() Dataset {
	out := d
	out.Data = append([]DataPoint(nil), d.Data...)
	if d.BackgroundColor != nil {
		bg := d.BackgroundColor.clone()
		out.BackgroundColor = &bg
	}
	if d.BorderColor != nil {
		bc := d.BorderColor.clone()
		out.BorderColor = &bc
	}
	if d.BorderWidth != nil {
		bw := *d.BorderWidth
		out.BorderWidth = &bw
	}
	return out
}

// NumericDataset builds a dataset from plain values.
func NumericDataset(label string, values ...float64) Dataset {
	data := make([]DataPoint, len(values))
	for i, v := range values {
		data[i] = Value(v)
	}
	return Dataset{Label: label, Data: data}
}
