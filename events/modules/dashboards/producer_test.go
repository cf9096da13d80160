package dashboards

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/clonos/dashboard-backend/model"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *captureWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishWritesKeyedEvent(t *testing.T) {
	w := &captureWriter{}
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &DashboardProducer{Writer: w, now: func() time.Time { return at }}

	d := model.NewDashboard("Ops", "", "ops@example.com")
	d.ID = "abc123"
	d.Widgets["w1"] = model.ChartData{ID: "w1", Type: model.ChartLine}

	require.NoError(t, p.Publish(context.Background(), EventCreated, RefFor(d)))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("abc123"), w.msgs[0].Key)

	var event DashboardEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &event))
	assert.Equal(t, EventCreated, event.EventType)
	assert.Equal(t, SchemaVersion, event.SchemaVersion)
	assert.NotEmpty(t, event.EventID)
	assert.True(t, at.Equal(event.EventTime))
	assert.Equal(t, DashboardRef{ID: "abc123", Name: "Ops", UserID: "ops@example.com", WidgetCount: 1}, event.Dashboard)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublishReturnsWriterError(t *testing.T) {
	w := &captureWriter{err: errors.New("broker down")}
	p := &DashboardProducer{Writer: w, now: time.Now}
	assert.Error(t, p.Publish(context.Background(), EventDeleted, DashboardRef{ID: "x"}))
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), EventUpdated, DashboardRef{}))
	assert.NoError(t, p.Close())
}
