package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/clonos/dashboard-backend/model"
	_ "github.com/go-sql-driver/mysql" // registers "mysql"
	"github.com/google/uuid"
	_ "github.com/lib/pq" // registers "postgres"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // registers "sqlite"
)

// DefaultSQLitePath is used when no SQLite path is configured.
const DefaultSQLitePath = "data/dashboards.db"

// SQLStore keeps dashboards in a single relational table. Layout and widgets
// are stored as JSON text; timestamps as Unix milliseconds so ordering works
// the same on every engine.
type SQLStore struct {
	db     *sql.DB
	driver string
	logger *zap.Logger
}

var _ DashboardStore = (*SQLStore)(nil)

func sqliteDSN(path string) string {
	if path == "" {
		path = DefaultSQLitePath
	}
	return path
}

// OpenSQL opens a relational store. driver is one of DriverSQLite,
// DriverPostgres or DriverMySQL; for SQLite dsn is a file path.
func OpenSQL(ctx context.Context, driver, dsn string, timeout time.Duration, logger *zap.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dsn == "" {
		return nil, fmt.Errorf("%s: connection string is required", driver)
	}

	sqlDriver := driver
	if driver == DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// SQLite only supports one writer
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(20)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	err = connectWithRetry(driver, timeout, logger, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLStore{db: db, driver: driver, logger: logger}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info("Dashboard store ready", zap.String("driver", driver))
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	var stmts []string
	switch s.driver {
	case DriverMySQL:
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS dashboards (
				id VARCHAR(64) NOT NULL PRIMARY KEY,
				user_id VARCHAR(255) NOT NULL,
				name TEXT NOT NULL,
				description TEXT NOT NULL,
				layout LONGTEXT NOT NULL,
				widgets LONGTEXT NOT NULL,
				created_at BIGINT NOT NULL,
				updated_at BIGINT NOT NULL,
				INDEX idx_dashboards_user_updated (user_id, updated_at)
			) DEFAULT CHARSET=utf8mb4`,
		}
	default:
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS dashboards (
				id VARCHAR(64) NOT NULL PRIMARY KEY,
				user_id VARCHAR(255) NOT NULL,
				name TEXT NOT NULL,
				description TEXT NOT NULL,
				layout TEXT NOT NULL,
				widgets TEXT NOT NULL,
				created_at BIGINT NOT NULL,
				updated_at BIGINT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_dashboards_user_updated ON dashboards(user_id, updated_at)`,
		}
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// rebind rewrites ? placeholders into $n for PostgreSQL.
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Driver implements DashboardStore.
func (s *SQLStore) Driver() string { return s.driver }

// ValidID implements DashboardStore. SQL stores issue UUIDs.
func (s *SQLStore) ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Ping implements DashboardStore.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close implements DashboardStore.
func (s *SQLStore) Close(_ context.Context) error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDashboard(row rowScanner, withWidgets bool) (*model.Dashboard, error) {
	var (
		d                    model.Dashboard
		layoutJSON, widgets  string
		createdMs, updatedMs int64
	)
	dest := []interface{}{&d.ID, &d.UserID, &d.Name, &d.Description, &layoutJSON}
	if withWidgets {
		dest = append(dest, &widgets)
	}
	dest = append(dest, &createdMs, &updatedMs)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(layoutJSON), &d.Layout); err != nil {
		return nil, fmt.Errorf("decode layout of %s: %w", d.ID, err)
	}
	if d.Layout == nil {
		d.Layout = []model.LayoutItem{}
	}
	if withWidgets {
		if err := json.Unmarshal([]byte(widgets), &d.Widgets); err != nil {
			return nil, fmt.Errorf("decode widgets of %s: %w", d.ID, err)
		}
		if d.Widgets == nil {
			d.Widgets = map[string]model.ChartData{}
		}
	}
	d.CreatedAt = time.UnixMilli(createdMs).UTC()
	d.UpdatedAt = time.UnixMilli(updatedMs).UTC()
	return &d, nil
}

func encodeContent(d *model.Dashboard) (string, string, error) {
	layout, err := json.Marshal(d.Layout)
	if err != nil {
		return "", "", fmt.Errorf("encode layout: %w", err)
	}
	widgets, err := json.Marshal(d.Widgets)
	if err != nil {
		return "", "", fmt.Errorf("encode widgets: %w", err)
	}
	return string(layout), string(widgets), nil
}

// ListDashboards implements DashboardStore.
func (s *SQLStore) ListDashboards(ctx context.Context, opts ListOptions) ([]model.DashboardSummary, int64, error) {
	opts = pageBounds(opts)

	var total int64
	countQuery := s.rebind(`SELECT COUNT(*) FROM dashboards WHERE user_id = ?`)
	if err := s.db.QueryRowContext(ctx, countQuery, opts.UserID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count dashboards: %w", err)
	}

	query := s.rebind(`
		SELECT id, user_id, name, description, layout, created_at, updated_at
		FROM dashboards
		WHERE user_id = ?
		ORDER BY updated_at DESC, id ASC
		LIMIT ? OFFSET ?`)
	rows, err := s.db.QueryContext(ctx, query, opts.UserID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list dashboards: %w", err)
	}
	defer rows.Close()

	dashboards := []model.DashboardSummary{}
	for rows.Next() {
		d, err := scanDashboard(rows, false)
		if err != nil {
			return nil, 0, err
		}
		dashboards = append(dashboards, d.Summary())
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list dashboards: %w", err)
	}
	return dashboards, total, nil
}

// GetDashboard implements DashboardStore.
func (s *SQLStore) GetDashboard(ctx context.Context, id string) (*model.Dashboard, error) {
	if !s.ValidID(id) {
		return nil, ErrInvalidID
	}
	query := s.rebind(`
		SELECT id, user_id, name, description, layout, widgets, created_at, updated_at
		FROM dashboards WHERE id = ?`)
	d, err := scanDashboard(s.db.QueryRowContext(ctx, query, id), true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get dashboard %s: %w", id, err)
	}
	return d, nil
}

// CreateDashboard implements DashboardStore.
func (s *SQLStore) CreateDashboard(ctx context.Context, d *model.Dashboard) error {
	d.Touch()
	if d.UserID == "" {
		d.UserID = model.DefaultUserID
	}
	layout, widgets, err := encodeContent(d)
	if err != nil {
		return err
	}

	id := uuid.NewString()
	query := s.rebind(`
		INSERT INTO dashboards (id, user_id, name, description, layout, widgets, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = s.db.ExecContext(ctx, query, id, d.UserID, d.Name, d.Description, layout, widgets,
		d.CreatedAt.UnixMilli(), d.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert dashboard: %w", err)
	}
	d.ID = id
	return nil
}

// UpdateDashboard implements DashboardStore.
func (s *SQLStore) UpdateDashboard(ctx context.Context, d *model.Dashboard) error {
	if !s.ValidID(d.ID) {
		return ErrInvalidID
	}
	d.Touch()
	layout, widgets, err := encodeContent(d)
	if err != nil {
		return err
	}

	query := s.rebind(`
		UPDATE dashboards
		SET user_id = ?, name = ?, description = ?, layout = ?, widgets = ?, updated_at = ?
		WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, query, d.UserID, d.Name, d.Description, layout, widgets,
		d.UpdatedAt.UnixMilli(), d.ID)
	if err != nil {
		return fmt.Errorf("update dashboard %s: %w", d.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// MySQL reports 0 for rows matched but unchanged
		exists, err := s.exists(ctx, d.ID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
	}
	return nil
}

func (s *SQLStore) exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT 1 FROM dashboards WHERE id = ?`), id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup dashboard %s: %w", id, err)
	}
	return true, nil
}

// DeleteDashboard implements DashboardStore.
func (s *SQLStore) DeleteDashboard(ctx context.Context, id string) error {
	if !s.ValidID(id) {
		return ErrInvalidID
	}
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM dashboards WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete dashboard %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete dashboard %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
