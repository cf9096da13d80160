// Package database - Handles all interaction with the dashboard store
package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/clonos/dashboard-backend/model"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Sentinel errors returned by every DashboardStore implementation.
var (
	ErrNotFound  = errors.New("dashboard not found")
	ErrInvalidID = errors.New("invalid dashboard ID")
)

// Supported values for Config.Driver
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMongo    = "mongo"
	DriverArango   = "arango"
)

// ListOptions selects one page of a user's dashboards.
type ListOptions struct {
	UserID string
	Limit  int
	Offset int
}

// DashboardStore persists dashboards. Implementations assign IDs on create and
// return ErrNotFound / ErrInvalidID for missing or malformed IDs.
type DashboardStore interface {
	// Driver names the backing database engine.
	Driver() string
	// ValidID reports whether id has the shape this store issues.
	ValidID(id string) bool
	Ping(ctx context.Context) error

	// ListDashboards returns the page sorted by last update, newest first,
	// without widgets, plus the total number of the user's dashboards.
	ListDashboards(ctx context.Context, opts ListOptions) ([]model.DashboardSummary, int64, error)
	GetDashboard(ctx context.Context, id string) (*model.Dashboard, error)
	CreateDashboard(ctx context.Context, d *model.Dashboard) error
	UpdateDashboard(ctx context.Context, d *model.Dashboard) error
	DeleteDashboard(ctx context.Context, id string) error

	Close(ctx context.Context) error
}

// Config carries the connection settings for every supported driver.
type Config struct {
	Driver string

	// SQL drivers
	DSN        string
	SQLitePath string

	// MongoDB
	MongoURI      string
	MongoDatabase string

	// ArangoDB
	ArangoURL      string
	ArangoUser     string
	ArangoPass     string
	ArangoDatabase string

	// ConnectTimeout bounds the retry loop while waiting for the database.
	ConnectTimeout time.Duration
}

// GetEnvDefault is a convenience function for handling env vars
func GetEnvDefault(key, defVal string) string {
	val, ex := os.LookupEnv(key) // get the env var
	if !ex {                     // not found return default
		return defVal
	}
	return val // return value for env var
}

// InitLogger sets up the Zap Logger to log to the console in a human readable format
func InitLogger() *zap.Logger {
	prodConfig := zap.NewProductionConfig()
	prodConfig.Encoding = "console"
	prodConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	prodConfig.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	logger, err := prodConfig.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// Open connects to the configured database, creating collections, tables and
// indexes as needed.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (DashboardStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch strings.ToLower(cfg.Driver) {
	case DriverSQLite, "", "sqlite3":
		return OpenSQL(ctx, DriverSQLite, sqliteDSN(cfg.SQLitePath), cfg.ConnectTimeout, logger)
	case DriverPostgres, "postgresql":
		return OpenSQL(ctx, DriverPostgres, cfg.DSN, cfg.ConnectTimeout, logger)
	case DriverMySQL:
		return OpenSQL(ctx, DriverMySQL, cfg.DSN, cfg.ConnectTimeout, logger)
	case DriverMongo, "mongodb":
		return OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.ConnectTimeout, logger)
	case DriverArango, "arangodb":
		return OpenArango(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// connectWithRetry runs connect with exponential backoff until it succeeds or
// maxElapsed passes. A zero maxElapsed retries forever.
func connectWithRetry(name string, maxElapsed time.Duration, logger *zap.Logger, connect func() error) error {
	const initialInterval = 1 * time.Second
	const maxInterval = 30 * time.Second

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialInterval
	bo.MaxInterval = maxInterval
	bo.MaxElapsedTime = maxElapsed

	err := backoff.RetryNotify(func() error {
		logger.Sugar().Infof("Attempting to connect to %s", name)
		return connect()
	}, bo, func(err error, wait time.Duration) {
		logger.Warn("Retrying database connection",
			zap.String("driver", name),
			zap.Duration("wait", wait),
			zap.Error(err))
	})
	if err != nil {
		return fmt.Errorf("connect to %s: %w", name, err)
	}
	return nil
}

// pageBounds normalises list options so every store applies the same defaults.
func pageBounds(opts ListOptions) ListOptions {
	if opts.UserID == "" {
		opts.UserID = model.DefaultUserID
	}
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return opts
}
