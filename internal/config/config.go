// Package config centralizes all application configuration into typed structs.
//
// Go Learning Note — Configuration Management:
// Defaults live in NewDefaultConfig as struct literals. Load layers a .env
// file (via github.com/joho/godotenv) and then process environment variables
// on top, so a developer can keep local settings in .env while deployments
// set real environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store and feed driver names.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"

	FeedLocal    = "local"
	FeedNATS     = "nats"
	FeedPostgres = "postgres"
)

// Config is the top-level configuration container. Grouping related settings
// into sub-structs keeps the config organized as the application grows.
type Config struct {
	Server  ServerConfig
	Search  SearchConfig
	Store   StoreConfig
	Session SessionConfig
	Feed    FeedConfig
	Metrics MetricsConfig
	Tracing TracingConfig
	Log     LogConfig
}

// ServerConfig holds HTTP server settings.
//
// Go Learning Note — time.Duration:
// Go uses time.Duration (an int64 of nanoseconds) instead of raw integers for
// timeouts and intervals. "10 * time.Second" is self-documenting.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration // 0 keeps /vehicles/stream connections open
	ShutdownTimeout time.Duration
	OperatorKeys    []string // X-API-Key values allowed to push vehicle positions
}

// SearchConfig controls the vehicle search defaults.
type SearchConfig struct {
	DefaultRadiusKm  float64 // radius for "nearby" when the caller sends none
	DefaultMaxPrice  float64 // ceiling the filter screen starts with
	FallbackToSample bool    // serve the built-in sample set when the store fails
}

// StoreConfig selects the vehicle/user/preference store.
type StoreConfig struct {
	Driver      string // memory | postgres
	DatabaseURL string
	Migrate     bool
}

// SessionConfig controls sign-in sessions.
type SessionConfig struct {
	Driver        string // memory | redis
	RedisAddr     string
	TTL           time.Duration
	ResetTTL      time.Duration
	SweepInterval time.Duration
}

// FeedConfig selects where live vehicle updates come from.
type FeedConfig struct {
	Driver           string // local | nats | postgres
	NATSURL          string
	SubjectPrefix    string
	GeohashPrecision int
}

type MetricsConfig struct {
	Enabled bool
}

type TracingConfig struct {
	Endpoint    string // OTLP/HTTP endpoint, empty disables tracing
	ServiceName string
}

type LogConfig struct {
	Level  string
	Format string // json | text
}

// NewDefaultConfig returns a Config populated with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            ":8080",
			ReadTimeout:     10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Search: SearchConfig{
			DefaultRadiusKm:  5.0,
			DefaultMaxPrice:  100,
			FallbackToSample: true,
		},
		Store: StoreConfig{
			Driver: DriverMemory,
		},
		Session: SessionConfig{
			Driver:        DriverMemory,
			RedisAddr:     "127.0.0.1:6379",
			TTL:           24 * time.Hour,
			ResetTTL:      30 * time.Minute,
			SweepInterval: time.Minute,
		},
		Feed: FeedConfig{
			Driver:           FeedLocal,
			NATSURL:          "nats://127.0.0.1:4222",
			SubjectPrefix:    "citymove.vehicles",
			GeohashPrecision: 5,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Tracing: TracingConfig{
			ServiceName: "citymove",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load returns the defaults overlaid with .env (if present) and the process
// environment.
func Load() (*Config, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv overlays the defaults with values from getenv. It is split out from
// Load so tests can supply a map instead of touching the real environment.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := NewDefaultConfig()
	env := envReader{getenv: getenv}

	if v := getenv("PORT"); v != "" {
		if !strings.HasPrefix(v, ":") {
			v = ":" + v
		}
		cfg.Server.Port = v
	}
	if v := getenv("OPERATOR_API_KEYS"); v != "" {
		cfg.Server.OperatorKeys = splitList(v)
	}

	if err := env.duration("SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout); err != nil {
		return nil, err
	}
	if err := env.positiveFloat("SEARCH_RADIUS_KM", &cfg.Search.DefaultRadiusKm); err != nil {
		return nil, err
	}
	if err := env.positiveFloat("SEARCH_MAX_PRICE", &cfg.Search.DefaultMaxPrice); err != nil {
		return nil, err
	}
	if err := env.boolean("SEARCH_FALLBACK_SAMPLE", &cfg.Search.FallbackToSample); err != nil {
		return nil, err
	}

	cfg.Store.Driver = getenvDefault(getenv, "STORE_DRIVER", cfg.Store.Driver)
	switch cfg.Store.Driver {
	case DriverMemory:
	case DriverPostgres:
		dsn, err := databaseURL(getenv)
		if err != nil {
			return nil, err
		}
		cfg.Store.DatabaseURL = dsn
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER: %q", cfg.Store.Driver)
	}
	if err := env.boolean("DB_MIGRATE", &cfg.Store.Migrate); err != nil {
		return nil, err
	}

	cfg.Session.Driver = getenvDefault(getenv, "SESSION_STORE", cfg.Session.Driver)
	if cfg.Session.Driver != DriverMemory && cfg.Session.Driver != DriverRedis {
		return nil, fmt.Errorf("invalid SESSION_STORE: %q", cfg.Session.Driver)
	}
	cfg.Session.RedisAddr = getenvDefault(getenv, "REDIS_ADDR", cfg.Session.RedisAddr)
	if err := env.duration("SESSION_TTL", &cfg.Session.TTL); err != nil {
		return nil, err
	}
	if err := env.duration("RESET_TOKEN_TTL", &cfg.Session.ResetTTL); err != nil {
		return nil, err
	}

	cfg.Feed.Driver = getenvDefault(getenv, "LIVE_FEED", cfg.Feed.Driver)
	switch cfg.Feed.Driver {
	case FeedLocal, FeedNATS:
	case FeedPostgres:
		if cfg.Store.Driver != DriverPostgres {
			return nil, fmt.Errorf("LIVE_FEED=postgres requires STORE_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("invalid LIVE_FEED: %q", cfg.Feed.Driver)
	}
	cfg.Feed.NATSURL = getenvDefault(getenv, "NATS_URL", cfg.Feed.NATSURL)
	cfg.Feed.SubjectPrefix = getenvDefault(getenv, "NATS_SUBJECT_PREFIX", cfg.Feed.SubjectPrefix)
	if v := getenv("GEOHASH_PRECISION"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 || p > 12 {
			return nil, fmt.Errorf("invalid GEOHASH_PRECISION: %q", v)
		}
		cfg.Feed.GeohashPrecision = p
	}

	if err := env.boolean("METRICS_ENABLED", &cfg.Metrics.Enabled); err != nil {
		return nil, err
	}
	cfg.Tracing.Endpoint = getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	cfg.Tracing.ServiceName = getenvDefault(getenv, "OTEL_SERVICE_NAME", cfg.Tracing.ServiceName)

	cfg.Log.Level = getenvDefault(getenv, "LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getenvDefault(getenv, "LOG_FORMAT", cfg.Log.Format)

	return cfg, nil
}

// databaseURL prefers DATABASE_URL / PG_DSN, else builds a DSN from PG* vars.
func databaseURL(getenv func(string) string) (string, error) {
	if dsn := firstNonEmpty(getenv("DATABASE_URL"), getenv("PG_DSN")); dsn != "" {
		return dsn, nil
	}
	db := getenv("PGDATABASE")
	if db == "" {
		return "", fmt.Errorf("PGDATABASE or DATABASE_URL must be set when STORE_DRIVER=postgres")
	}
	host := getenvDefault(getenv, "PGHOST", "127.0.0.1")
	port := getenvDefault(getenv, "PGPORT", "5432")
	user := getenvDefault(getenv, "PGUSER", "postgres")
	sslmode := getenvDefault(getenv, "PGSSLMODE", "disable")
	if pass := getenv("PGPASSWORD"); pass != "" {
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", urlEscape(user), urlEscape(pass), host, port, db, sslmode), nil
	}
	return fmt.Sprintf("postgres://%s@%s:%s/%s?sslmode=%s", urlEscape(user), host, port, db, sslmode), nil
}

type envReader struct {
	getenv func(string) string
}

func (e envReader) duration(key string, dst *time.Duration) error {
	v := e.getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fmt.Errorf("invalid %s: %q", key, v)
	}
	*dst = d
	return nil
}

func (e envReader) positiveFloat(key string, dst *float64) error {
	v := e.getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return fmt.Errorf("invalid %s: %q", key, v)
	}
	*dst = f
	return nil
}

func (e envReader) boolean(key string, dst *bool) error {
	v := e.getenv(key)
	if v == "" {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "t", "yes", "y", "on":
		*dst = true
	case "0", "false", "f", "no", "n", "off":
		*dst = false
	default:
		return fmt.Errorf("invalid %s: %q", key, v)
	}
	return nil
}

func getenvDefault(getenv func(string) string, k, def string) string {
	if v := getenv(k); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func urlEscape(s string) string {
	// Minimal escape for DSN user/pass with special chars
	r := strings.NewReplacer("@", "%40", ":", "%3A", "/", "%2F", "?", "%3F", "#", "%23")
	return r.Replace(s)
}
