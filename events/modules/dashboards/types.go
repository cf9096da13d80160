// Package dashboards publishes dashboard lifecycle events to Kafka.
package dashboards

import (
	"time"

	"github.com/clonos/dashboard-backend/model"
)

// Event types
const (
	EventCreated    = "dashboard.created"
	EventUpdated    = "dashboard.updated"
	EventDeleted    = "dashboard.deleted"
	EventDuplicated = "dashboard.duplicated"
	EventImported   = "dashboard.imported"
)

// SchemaVersion of the event contract
const SchemaVersion = "v1"

// DashboardEvent is the message published for every dashboard change.
type DashboardEvent struct {
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EventTime     time.Time `json:"event_time"`
	SchemaVersion string    `json:"schema_version"`

	Dashboard DashboardRef `json:"dashboard"`
}

// DashboardRef identifies the dashboard an event is about.
type DashboardRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	UserID      string `json:"user_id"`
	WidgetCount int    `json:"widget_count"`

	// SourceID is set for duplicates
	SourceID string `json:"source_id,omitempty"`
}

// RefFor builds the event reference for d.
func RefFor(d *model.Dashboard) DashboardRef {
	return DashboardRef{
		ID:          d.ID,
		Name:        d.Name,
		UserID:      d.UserID,
		WidgetCount: len(d.Widgets),
	}
}
