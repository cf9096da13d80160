package dashboards

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher sends dashboard events. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, eventType string, ref DashboardRef) error
	Close() error
}

// NopPublisher drops every event; used when no brokers are configured.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, string, DashboardRef) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }

// messageWriter is the part of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// DashboardProducer handles sending dashboard events to Kafka
type DashboardProducer struct {
	Writer messageWriter
	now    func() time.Time
}

// NewDashboardProducer initializes an async Kafka writer for dashboard events.
// transport may be nil for the default plaintext transport.
func NewDashboardProducer(brokers []string, topic string, transport kafka.RoundTripper, logger *zap.Logger) *DashboardProducer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		Async:                  true,
		AllowAutoTopicCreation: true,
		Transport:              transport,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn("Failed to deliver dashboard events", zap.Int("count", len(messages)), zap.Error(err))
			}
		},
	}
	return &DashboardProducer{Writer: w, now: time.Now}
}

// NewEvent builds an event of the given type.
func NewEvent(eventType string, ref DashboardRef, at time.Time) DashboardEvent {
	return DashboardEvent{
		EventType:     eventType,
		EventID:       uuid.New().String(),
		EventTime:     at.UTC(),
		SchemaVersion: SchemaVersion,
		Dashboard:     ref,
	}
}

// Publish sends the event keyed by dashboard ID so a dashboard's events stay ordered.
func (p *DashboardProducer) Publish(ctx context.Context, eventType string, ref DashboardRef) error {
	payload, err := json.Marshal(NewEvent(eventType, ref, p.now()))
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ref.ID),
		Value: payload,
	})
}

// Close flushes pending messages and closes the writer
func (p *DashboardProducer) Close() error {
	return p.Writer.Close()
}
