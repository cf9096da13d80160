// Package kafka builds broker connections for the dashboard event producer.
package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"go.uber.org/zap"
)

// Credentials for SASL/PLAIN over TLS. Both empty means plaintext.
type Credentials struct {
	APIKey    string
	APISecret string
}

func (c Credentials) enabled() bool {
	return c.APIKey != "" && c.APISecret != ""
}

// NewDialer returns a dialer configured for the given credentials
func NewDialer(creds Credentials) *kafka.Dialer {
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	if creds.enabled() {
		dialer.SASLMechanism = plain.Mechanism{
			Username: creds.APIKey,
			Password: creds.APISecret,
		}
		dialer.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return dialer
}

// NewTransport returns the writer transport, or nil for the library default.
func NewTransport(creds Credentials) kafka.RoundTripper {
	if !creds.enabled() {
		return nil
	}
	return &kafka.Transport{
		SASL: plain.Mechanism{
			Username: creds.APIKey,
			Password: creds.APISecret,
		},
		TLS: &tls.Config{MinVersion: tls.VersionTLS12},
	}
}

// CheckBroker dials the first broker, retrying up to attempts times.
func CheckBroker(ctx context.Context, brokers []string, dialer *kafka.Dialer, attempts int, logger *zap.Logger) error {
	if len(brokers) == 0 {
		return errors.New("no kafka brokers configured")
	}
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 1; i <= attempts; i++ {
		logger.Sugar().Infof("Kafka connection attempt %d/%d...", i, attempts)
		var conn *kafka.Conn
		conn, err = dialer.DialContext(ctx, "tcp", brokers[0])
		if err == nil {
			conn.Close()
			return nil
		}
		if i < attempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(2 * time.Second):
			}
		}
	}
	return err
}
