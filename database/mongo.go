package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clonos/dashboard-backend/model"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"
)

const (
	defaultMongoURI      = "mongodb://localhost:27017/dashboard-builder"
	mongoCollection      = "dashboards"
	defaultMongoDatabase = "dashboard-builder"
)

// MongoStore keeps each dashboard as one document, widgets embedded.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	logger *zap.Logger
}

var _ DashboardStore = (*MongoStore)(nil)

type mongoDashboard struct {
	ID          bson.ObjectID              `bson:"_id,omitempty"`
	Name        string                     `bson:"name"`
	Description string                     `bson:"description"`
	Layout      []model.LayoutItem         `bson:"layout"`
	Widgets     map[string]model.ChartData `bson:"widgets,omitempty"`
	UserID      string                     `bson:"userId"`
	CreatedAt   time.Time                  `bson:"createdAt"`
	UpdatedAt   time.Time                  `bson:"updatedAt"`
}

func toMongo(d *model.Dashboard) mongoDashboard {
	return mongoDashboard{
		Name:        d.Name,
		Description: d.Description,
		Layout:      d.Layout,
		Widgets:     d.Widgets,
		UserID:      d.UserID,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (m mongoDashboard) toModel() *model.Dashboard {
	d := &model.Dashboard{
		ID:          m.ID.Hex(),
		Name:        m.Name,
		Description: m.Description,
		Layout:      m.Layout,
		Widgets:     m.Widgets,
		UserID:      m.UserID,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
	if d.Layout == nil {
		d.Layout = []model.LayoutItem{}
	}
	return d
}

// mongoDatabaseName picks the database from the URI path when none is configured.
func mongoDatabaseName(uri string) string {
	rest := uri
	for _, prefix := range []string{"mongodb+srv://", "mongodb://"} {
		rest = strings.TrimPrefix(rest, prefix)
	}
	if at := strings.LastIndex(rest, "@"); at != -1 {
		rest = rest[at+1:]
	}
	slash := strings.Index(rest, "/")
	if slash == -1 {
		return defaultMongoDatabase
	}
	name := rest[slash+1:]
	if q := strings.Index(name, "?"); q != -1 {
		name = name[:q]
	}
	if name == "" {
		return defaultMongoDatabase
	}
	return name
}

// OpenMongo connects to MongoDB and ensures the dashboards collection index.
func OpenMongo(ctx context.Context, uri, dbName string, timeout time.Duration, logger *zap.Logger) (*MongoStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if uri == "" {
		uri = defaultMongoURI
	}
	if dbName == "" {
		dbName = mongoDatabaseName(uri)
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	err = connectWithRetry("MongoDB", timeout, logger, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return client.Ping(pingCtx, readpref.Primary())
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	coll := client.Database(dbName).Collection(mongoCollection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "updatedAt", Value: -1}},
		Options: options.Index().SetName("dashboards_user_updated"),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create mongo index: %w", err)
	}

	logger.Info("Dashboard store ready", zap.String("driver", DriverMongo), zap.String("database", dbName))
	return &MongoStore{client: client, coll: coll, logger: logger}, nil
}

// Driver implements DashboardStore.
func (s *MongoStore) Driver() string { return DriverMongo }

// ValidID implements DashboardStore. IDs are 24-character hex ObjectIDs.
func (s *MongoStore) ValidID(id string) bool {
	_, err := bson.ObjectIDFromHex(id)
	return err == nil
}

// Ping implements DashboardStore.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close implements DashboardStore.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) objectID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.ObjectID{}, ErrInvalidID
	}
	return oid, nil
}

// ListDashboards implements DashboardStore.
func (s *MongoStore) ListDashboards(ctx context.Context, opts ListOptions) ([]model.DashboardSummary, int64, error) {
	opts = pageBounds(opts)
	filter := bson.M{"userId": opts.UserID}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(opts.Offset)).
		SetLimit(int64(opts.Limit)).
		SetProjection(bson.M{"widgets": 0})

	cursor, err := s.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("list dashboards: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoDashboard
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode dashboards: %w", err)
	}

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count dashboards: %w", err)
	}

	out := make([]model.DashboardSummary, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toModel().Summary())
	}
	return out, total, nil
}

// GetDashboard implements DashboardStore.
func (s *MongoStore) GetDashboard(ctx context.Context, id string) (*model.Dashboard, error) {
	oid, err := s.objectID(id)
	if err != nil {
		return nil, err
	}

	var doc mongoDashboard
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get dashboard %s: %w", id, err)
	}

	d := doc.toModel()
	if d.Widgets == nil {
		d.Widgets = map[string]model.ChartData{}
	}
	return d, nil
}

// CreateDashboard implements DashboardStore.
func (s *MongoStore) CreateDashboard(ctx context.Context, d *model.Dashboard) error {
	d.Touch()
	if d.UserID == "" {
		d.UserID = model.DefaultUserID
	}
	doc := toMongo(d)
	doc.ID = bson.NewObjectID()

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert dashboard: %w", err)
	}
	d.ID = doc.ID.Hex()
	return nil
}

// UpdateDashboard implements DashboardStore.
func (s *MongoStore) UpdateDashboard(ctx context.Context, d *model.Dashboard) error {
	oid, err := s.objectID(d.ID)
	if err != nil {
		return err
	}
	d.Touch()
	doc := toMongo(d)
	doc.ID = oid

	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return fmt.Errorf("update dashboard %s: %w", d.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteDashboard implements DashboardStore.
func (s *MongoStore) DeleteDashboard(ctx context.Context, id string) error {
	oid, err := s.objectID(id)
	if err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete dashboard %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
