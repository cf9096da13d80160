package database

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/arangodb/go-driver/v2/connection"
	"github.com/clonos/dashboard-backend/model"
	"go.uber.org/zap"
)

const (
	defaultArangoURL      = "http://localhost:8529"
	defaultArangoDatabase = "dashboards"
	arangoCollection      = "dashboards"
)

// ArangoStore keeps dashboards as documents in an ArangoDB collection.
type ArangoStore struct {
	client arangodb.Client
	db     arangodb.Database
	col    arangodb.Collection
	logger *zap.Logger
}

var _ DashboardStore = (*ArangoStore)(nil)

// arangoDashboard stores timestamps as Unix milliseconds so AQL sorts numerically.
type arangoDashboard struct {
	Key         string                     `json:"_key,omitempty"`
	Name        string                     `json:"name"`
	Description string                     `json:"description"`
	Layout      []model.LayoutItem         `json:"layout"`
	Widgets     map[string]model.ChartData `json:"widgets,omitempty"`
	UserID      string                     `json:"userId"`
	CreatedAt   int64                      `json:"createdAt"`
	UpdatedAt   int64                      `json:"updatedAt"`
}

func toArango(d *model.Dashboard) arangoDashboard {
	return arangoDashboard{
		Name:        d.Name,
		Description: d.Description,
		Layout:      d.Layout,
		Widgets:     d.Widgets,
		UserID:      d.UserID,
		CreatedAt:   d.CreatedAt.UnixMilli(),
		UpdatedAt:   d.UpdatedAt.UnixMilli(),
	}
}

func (a arangoDashboard) toModel() *model.Dashboard {
	d := &model.Dashboard{
		ID:          a.Key,
		Name:        a.Name,
		Description: a.Description,
		Layout:      a.Layout,
		Widgets:     a.Widgets,
		UserID:      a.UserID,
		CreatedAt:   time.UnixMilli(a.CreatedAt).UTC(),
		UpdatedAt:   time.UnixMilli(a.UpdatedAt).UTC(),
	}
	if d.Layout == nil {
		d.Layout = []model.LayoutItem{}
	}
	return d
}

func dbConnectionConfig(endpoint connection.Endpoint, dbuser string, dbpass string) connection.HttpConfiguration {
	return connection.HttpConfiguration{
		Authentication: connection.NewBasicAuth(dbuser, dbpass),
		Endpoint:       endpoint,
		ContentType:    connection.ApplicationJSON,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, // #nosec G402
			},
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 90 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// OpenArango connects to ArangoDB, creating the database, collection and index if missing.
func OpenArango(ctx context.Context, cfg Config, logger *zap.Logger) (*ArangoStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dburl := cfg.ArangoURL
	if dburl == "" {
		dburl = defaultArangoURL
	}
	databaseName := cfg.ArangoDatabase
	if databaseName == "" {
		databaseName = defaultArangoDatabase
	}

	var client arangodb.Client
	err := connectWithRetry("ArangoDB", cfg.ConnectTimeout, logger, func() error {
		endpoint := connection.NewRoundRobinEndpoints([]string{dburl})
		conn := connection.NewHttpConnection(dbConnectionConfig(endpoint, cfg.ArangoUser, cfg.ArangoPass))
		client = arangodb.NewClient(conn)

		versionInfo, err := client.Version(ctx)
		if err != nil {
			return err
		}
		logger.Sugar().Infof("Database has version '%s' and license '%s'", versionInfo.Version, versionInfo.License)
		return nil
	})
	if err != nil {
		return nil, err
	}

	db, err := arangoDatabase(ctx, client, databaseName)
	if err != nil {
		return nil, err
	}

	var col arangodb.Collection
	exists, err := db.CollectionExists(ctx, arangoCollection)
	if err != nil {
		return nil, fmt.Errorf("check collection: %w", err)
	}
	if exists {
		var options arangodb.GetCollectionOptions
		if col, err = db.GetCollection(ctx, arangoCollection, &options); err != nil {
			return nil, fmt.Errorf("use collection: %w", err)
		}
	} else {
		if col, err = db.CreateCollectionV2(ctx, arangoCollection, nil); err != nil {
			return nil, fmt.Errorf("create collection: %w", err)
		}
	}

	if err := ensureIndex(ctx, col, "dashboards_user_updated", []string{"userId", "updatedAt"}, logger); err != nil {
		return nil, err
	}

	logger.Info("Dashboard store ready", zap.String("driver", DriverArango), zap.String("database", databaseName))
	return &ArangoStore{client: client, db: db, col: col, logger: logger}, nil
}

func arangoDatabase(ctx context.Context, client arangodb.Client, name string) (arangodb.Database, error) {
	dblist, err := client.Databases(ctx)
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}
	for _, dbinfo := range dblist {
		if dbinfo.Name() == name {
			var options arangodb.GetDatabaseOptions
			db, err := client.GetDatabase(ctx, name, &options)
			if err != nil {
				return nil, fmt.Errorf("get database: %w", err)
			}
			return db, nil
		}
	}
	db, err := client.CreateDatabase(ctx, name, nil)
	if err != nil {
		return nil, fmt.Errorf("create database: %w", err)
	}
	return db, nil
}

func ensureIndex(ctx context.Context, col arangodb.Collection, name string, fields []string, logger *zap.Logger) error {
	if indexes, err := col.Indexes(ctx); err == nil {
		for _, index := range indexes {
			if index.Name == name {
				return nil
			}
		}
	}

	False := false
	indexOptions := arangodb.CreatePersistentIndexOptions{
		Unique: &False,
		Sparse: &False,
		Name:   name,
	}
	if _, _, err := col.EnsurePersistentIndex(ctx, fields, &indexOptions); err != nil {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	logger.Sugar().Infof("Created index: %s on %s", name, arangoCollection)
	return nil
}

// Driver implements DashboardStore.
func (s *ArangoStore) Driver() string { return DriverArango }

// ValidID implements DashboardStore. Document keys allow letters, digits and
// a small set of punctuation, up to 254 bytes.
func (s *ArangoStore) ValidID(id string) bool {
	if id == "" || len(id) > 254 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r < 128 && strings.ContainsRune("_-:.@()+,=;$!*'%", r):
		default:
			return false
		}
	}
	return true
}

// Ping implements DashboardStore.
func (s *ArangoStore) Ping(ctx context.Context) error {
	_, err := s.client.Version(ctx)
	return err
}

// Close implements DashboardStore. The HTTP connection needs no teardown.
func (s *ArangoStore) Close(_ context.Context) error { return nil }

// readOne runs an AQL query expected to return at most one document.
func (s *ArangoStore) readOne(ctx context.Context, query string, bindVars map[string]interface{}, out interface{}) (bool, error) {
	cursor, err := s.db.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
	if err != nil {
		return false, err
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return false, nil
	}
	if _, err := cursor.ReadDocument(ctx, out); err != nil {
		return false, err
	}
	return true, nil
}

// ListDashboards implements DashboardStore.
func (s *ArangoStore) ListDashboards(ctx context.Context, opts ListOptions) ([]model.DashboardSummary, int64, error) {
	opts = pageBounds(opts)

	var total int64
	_, err := s.readOne(ctx, `
		RETURN LENGTH(
			FOR d IN dashboards
				FILTER d.userId == @userId
				RETURN 1
		)`, map[string]interface{}{"userId": opts.UserID}, &total)
	if err != nil {
		return nil, 0, fmt.Errorf("count dashboards: %w", err)
	}

	query := `
		FOR d IN dashboards
			FILTER d.userId == @userId
			SORT d.updatedAt DESC, d._key ASC
			LIMIT @offset, @limit
			RETURN UNSET(d, "widgets")
	`
	cursor, err := s.db.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"userId": opts.UserID,
			"offset": opts.Offset,
			"limit":  opts.Limit,
		},
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list dashboards: %w", err)
	}
	defer cursor.Close()

	dashboards := []model.DashboardSummary{}
	for cursor.HasMore() {
		var doc arangoDashboard
		if _, err := cursor.ReadDocument(ctx, &doc); err != nil {
			return nil, 0, fmt.Errorf("decode dashboard: %w", err)
		}
		dashboards = append(dashboards, doc.toModel().Summary())
	}
	return dashboards, total, nil
}

// GetDashboard implements DashboardStore.
func (s *ArangoStore) GetDashboard(ctx context.Context, id string) (*model.Dashboard, error) {
	if !s.ValidID(id) {
		return nil, ErrInvalidID
	}
	var doc arangoDashboard
	found, err := s.readOne(ctx, `
		FOR d IN dashboards
			FILTER d._key == @key
			LIMIT 1
			RETURN d`, map[string]interface{}{"key": id}, &doc)
	if err != nil {
		return nil, fmt.Errorf("get dashboard %s: %w", id, err)
	}
	if !found {
		return nil, ErrNotFound
	}

	d := doc.toModel()
	if d.Widgets == nil {
		d.Widgets = map[string]model.ChartData{}
	}
	return d, nil
}

// CreateDashboard implements DashboardStore.
func (s *ArangoStore) CreateDashboard(ctx context.Context, d *model.Dashboard) error {
	d.Touch()
	if d.UserID == "" {
		d.UserID = model.DefaultUserID
	}
	meta, err := s.col.CreateDocument(ctx, toArango(d))
	if err != nil {
		return fmt.Errorf("insert dashboard: %w", err)
	}
	d.ID = meta.Key
	return nil
}

// UpdateDashboard implements DashboardStore.
func (s *ArangoStore) UpdateDashboard(ctx context.Context, d *model.Dashboard) error {
	if !s.ValidID(d.ID) {
		return ErrInvalidID
	}
	d.Touch()

	var key string
	found, err := s.readOne(ctx, `
		FOR d IN dashboards
			FILTER d._key == @key
			REPLACE d WITH @doc IN dashboards
			RETURN NEW._key`, map[string]interface{}{"key": d.ID, "doc": toArango(d)}, &key)
	if err != nil {
		return fmt.Errorf("update dashboard %s: %w", d.ID, err)
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

// DeleteDashboard implements DashboardStore.
func (s *ArangoStore) DeleteDashboard(ctx context.Context, id string) error {
	if !s.ValidID(id) {
		return ErrInvalidID
	}
	var key string
	found, err := s.readOne(ctx, `
		FOR d IN dashboards
			FILTER d._key == @key
			REMOVE d IN dashboards
			RETURN OLD._key`, map[string]interface{}{"key": id}, &key)
	if err != nil {
		return fmt.Errorf("delete dashboard %s: %w", id, err)
	}
	if !found {
		return ErrNotFound
	}
	return nil
}
