package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/clonos/dashboard-backend/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"CONFIG_FILE", "PORT", "ENVIRONMENT", "DB_DRIVER", "DATABASE_URL", "SQLITE_PATH",
	"MONGODB_URI", "ARANGO_URL", "ARANGO_HOST", "ARANGO_PORT", "AUTH_REQUIRED",
	"CORS_ORIGINS", "BODY_LIMIT_MB", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"KAFKA_BROKERS", "DB_CONNECT_TIMEOUT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, database.DriverSQLite, cfg.DBDriver)
	assert.Equal(t, 10*1024*1024, cfg.BodyLimit())
	assert.False(t, cfg.AuthRequired)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "8080"
db_driver: postgres
database_url: postgres://localhost/dash
body_limit_mb: 2
db_connect_timeout: 15s
cors_origins:
  - http://localhost:3000
kafka_brokers:
  - kafka:9092
`), 0600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9090")
	t.Setenv("AUTH_REQUIRED", "true")
	t.Setenv("ENVIRONMENT", "Development")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 2*1024*1024, cfg.BodyLimit())
	assert.Equal(t, 15*time.Second, cfg.DBConnectTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.AuthRequired)
	assert.True(t, cfg.IsDevelopment())

	db := cfg.Database()
	assert.Equal(t, "postgres", db.Driver)
	assert.Equal(t, "postgres://localhost/dash", db.DSN)
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("BODY_LIMIT_MB", "lots")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestListAndArangoEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CORS_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("ARANGO_HOST", "arango")
	t.Setenv("ARANGO_PORT", "9529")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, "http://arango:9529", cfg.ArangoURL)
}

func TestDatabaseMongoFromURL(t *testing.T) {
	cfg := Default()
	cfg.DBDriver = database.DriverMongo
	cfg.DatabaseURL = "mongodb://mongo:27017/dash"
	assert.Equal(t, "mongodb://mongo:27017/dash", cfg.Database().MongoURI)
}
