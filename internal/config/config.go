// Package config loads server settings from .env, an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/clonos/dashboard-backend/database"
	"github.com/clonos/dashboard-backend/model"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config holds every runtime setting. YAML keys mirror the environment variables.
type Config struct {
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`

	DBDriver         string        `yaml:"db_driver"`
	DatabaseURL      string        `yaml:"database_url"`
	SQLitePath       string        `yaml:"sqlite_path"`
	MongoURI         string        `yaml:"mongodb_uri"`
	MongoDatabase    string        `yaml:"mongodb_database"`
	ArangoURL        string        `yaml:"arango_url"`
	ArangoUser       string        `yaml:"arango_user"`
	ArangoPass       string        `yaml:"arango_pass"`
	ArangoDatabase   string        `yaml:"arango_database"`
	DBConnectTimeout time.Duration `yaml:"db_connect_timeout"`

	JWTSecret    string   `yaml:"jwt_secret"`
	AuthRequired bool     `yaml:"auth_required"`
	CORSOrigins  []string `yaml:"cors_origins"`
	BodyLimitMB  int      `yaml:"body_limit_mb"`

	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`

	KafkaBrokers   []string `yaml:"kafka_brokers"`
	KafkaTopic     string   `yaml:"kafka_topic"`
	KafkaAPIKey    string   `yaml:"kafka_api_key"`
	KafkaAPISecret string   `yaml:"kafka_api_secret"`

	DefaultUserID string `yaml:"default_user_id"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Port:             "5000",
		Environment:      "production",
		DBDriver:         database.DriverSQLite,
		SQLitePath:       database.DefaultSQLitePath,
		ArangoUser:       "root",
		ArangoDatabase:   "dashboards",
		DBConnectTimeout: time.Minute,
		JWTSecret:        "dashboard-builder-demo-secret",
		CORSOrigins:      []string{"*"},
		BodyLimitMB:      10,
		RateLimitRPS:     20,
		RateLimitBurst:   40,
		KafkaTopic:       "dashboard-events",
		DefaultUserID:    model.DefaultUserID,
	}
}

// Load reads .env (if present), then CONFIG_FILE (if set), then applies
// environment overrides.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.Environment, "ENVIRONMENT")
	setString(&c.DBDriver, "DB_DRIVER")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.SQLitePath, "SQLITE_PATH")
	setString(&c.MongoURI, "MONGODB_URI")
	setString(&c.MongoDatabase, "MONGODB_DATABASE")
	setString(&c.ArangoUser, "ARANGO_USER")
	setString(&c.ArangoPass, "ARANGO_PASS")
	setString(&c.ArangoDatabase, "ARANGO_DATABASE")
	setString(&c.JWTSecret, "JWT_SECRET")
	setString(&c.KafkaTopic, "KAFKA_TOPIC")
	setString(&c.KafkaAPIKey, "KAFKA_API_KEY")
	setString(&c.KafkaAPISecret, "KAFKA_API_SECRET")
	setString(&c.DefaultUserID, "DEFAULT_USER_ID")
	setList(&c.CORSOrigins, "CORS_ORIGINS")
	setList(&c.KafkaBrokers, "KAFKA_BROKERS")

	if url, ok := os.LookupEnv("ARANGO_URL"); ok {
		c.ArangoURL = url
	} else if host, ok := os.LookupEnv("ARANGO_HOST"); ok {
		c.ArangoURL = "http://" + host + ":" + database.GetEnvDefault("ARANGO_PORT", "8529")
	}

	if v, ok := os.LookupEnv("AUTH_REQUIRED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("AUTH_REQUIRED: %w", err)
		}
		c.AuthRequired = b
	}
	if v, ok := os.LookupEnv("BODY_LIMIT_MB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BODY_LIMIT_MB: %w", err)
		}
		c.BodyLimitMB = n
	}
	if v, ok := os.LookupEnv("RATE_LIMIT_RPS"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		c.RateLimitRPS = f
	}
	if v, ok := os.LookupEnv("RATE_LIMIT_BURST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_BURST: %w", err)
		}
		c.RateLimitBurst = n
	}
	if v, ok := os.LookupEnv("DB_CONNECT_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("DB_CONNECT_TIMEOUT: %w", err)
		}
		c.DBConnectTimeout = d
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setList(dst *[]string, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

// IsDevelopment reports whether error details may be returned to clients.
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// BodyLimit is the request body limit in bytes.
func (c Config) BodyLimit() int {
	if c.BodyLimitMB <= 0 {
		return 10 * 1024 * 1024
	}
	return c.BodyLimitMB * 1024 * 1024
}

// Database returns the store settings. DATABASE_URL is the DSN for SQL
// drivers and the URI for MongoDB when MONGODB_URI is unset.
func (c Config) Database() database.Config {
	mongoURI := c.MongoURI
	if mongoURI == "" && strings.HasPrefix(c.DatabaseURL, "mongodb") {
		mongoURI = c.DatabaseURL
	}
	return database.Config{
		Driver:         c.DBDriver,
		DSN:            c.DatabaseURL,
		SQLitePath:     c.SQLitePath,
		MongoURI:       mongoURI,
		MongoDatabase:  c.MongoDatabase,
		ArangoURL:      c.ArangoURL,
		ArangoUser:     c.ArangoUser,
		ArangoPass:     c.ArangoPass,
		ArangoDatabase: c.ArangoDatabase,
		ConnectTimeout: c.DBConnectTimeout,
	}
}
