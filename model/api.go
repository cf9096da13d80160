// Package model - API types for dashboard requests and responses
package model

import (
	"encoding/json"
	"time"
)

// ExportSchemaVersion is stamped on exported dashboards and checked on import.
const ExportSchemaVersion = "1.0.0"

// DashboardInput is the body of create and update requests. Layout and
// widgets stay raw until validated so type errors can be reported per field.
type DashboardInput struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Layout      json.RawMessage `json:"layout"`
	Widgets     json.RawMessage `json:"widgets"`
	UserID      string          `json:"userId"`
}

// ImportRequest wraps an exported dashboard document.
type ImportRequest struct {
	Data   json.RawMessage `json:"data"`
	UserID string          `json:"userId"`
}

// ExportDocument is the portable form of a dashboard.
type ExportDocument struct {
	Name          string               `json:"name"`
	Description   string               `json:"description"`
	Layout        []LayoutItem         `json:"layout"`
	Widgets       map[string]ChartData `json:"widgets"`
	ExportedAt    time.Time            `json:"exportedAt"`
	SchemaVersion string               `json:"schemaVersion,omitempty"`
}

// NewExportDocument builds the export form of d.
func NewExportDocument(d *Dashboard) ExportDocument {
	widgets := d.Widgets
	if widgets == nil {
		widgets = map[string]ChartData{}
	}
	layout := d.Layout
	if layout == nil {
		layout = []LayoutItem{}
	}
	return ExportDocument{
		Name:          d.Name,
		Description:   d.Description,
		Layout:        layout,
		Widgets:       widgets,
		ExportedAt:    time.Now().UTC(),
		SchemaVersion: ExportSchemaVersion,
	}
}

// Pagination describes a page of list results.
type Pagination struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// FieldError is one validation failure reported back to the client.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
