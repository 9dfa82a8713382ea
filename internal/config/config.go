package config

import (
	"fmt"
	"time"

	"github.com/taitfuller/feedr-backend/internal/domain"
	pkgconfig "github.com/taitfuller/feedr-backend/pkg/config"
	"github.com/taitfuller/feedr-backend/pkg/database"
)

const defaultJWTSecret = "change-this-to-a-secure-secret"

// Config holds all configuration for the feedr API.
type Config struct {
	Environment    string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	ServiceVersion string `env:"SERVICE_VERSION" envDefault:"dev"`

	// HTTP server
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8080"`
	RequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// PostgreSQL
	PostgresHost     string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int           `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string        `env:"POSTGRES_USER" envDefault:"feedr"`
	PostgresPass     string        `env:"POSTGRES_PASSWORD" envDefault:"feedr"`
	PostgresDB       string        `env:"POSTGRES_DB" envDefault:"feedr"`
	PostgresSSL      string        `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	PostgresMaxConns int32         `env:"POSTGRES_MAX_CONNS" envDefault:"20"`
	PostgresMinConns int32         `env:"POSTGRES_MIN_CONNS" envDefault:"2"`
	SlowQuery        time.Duration `env:"SLOW_QUERY_THRESHOLD" envDefault:"200ms"`
	RunMigrations    bool          `env:"RUN_MIGRATIONS" envDefault:"true"`

	// Redis
	RedisHost     string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	AppCacheTTL   time.Duration `env:"APP_CACHE_TTL" envDefault:"10m"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Tracing
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// JWT
	JWTSecret string        `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`

	// CORS
	CORSOrigin string `env:"CORS_ORIGIN" envDefault:"http://localhost:3000"`

	// GitHub proxy
	GitHubAPIURL          string        `env:"GITHUB_API_URL" envDefault:"https://api.github.com"`
	GitHubTimeout         time.Duration `env:"GITHUB_TIMEOUT" envDefault:"15s"`
	GitHubBreakerTimeout  time.Duration `env:"GITHUB_BREAKER_OPEN_TIMEOUT" envDefault:"30s"`
	GitHubBreakerMinReqs  uint32        `env:"GITHUB_BREAKER_MIN_REQUESTS" envDefault:"5"`
	GitHubIssuesPerMinute int           `env:"GITHUB_ISSUES_PER_MINUTE" envDefault:"10"`
	GitHubIssueBurst      int           `env:"GITHUB_ISSUE_BURST" envDefault:"3"`

	// TopicSummaryShape selects the per-topic counts returned by the topic
	// listing: "counts" (newReviews/oldReviews) or "growth" (newReviews/increase).
	TopicSummaryShape string `env:"TOPIC_SUMMARY_SHAPE" envDefault:"counts"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load feedr config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.PostgresMinConns > c.PostgresMaxConns {
		return fmt.Errorf("POSTGRES_MIN_CONNS (%d) exceeds POSTGRES_MAX_CONNS (%d)", c.PostgresMinConns, c.PostgresMaxConns)
	}
	if _, err := domain.ParseSummaryShape(c.TopicSummaryShape); err != nil {
		return fmt.Errorf("TOPIC_SUMMARY_SHAPE: %w", err)
	}
	if c.GitHubIssuesPerMinute < 1 || c.GitHubIssueBurst < 1 {
		return fmt.Errorf("GitHub issue rate limit must be positive")
	}
	if c.JWTExpiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY must be positive, got %s", c.JWTExpiry)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be within [0, 1], got %v", c.OTELSampleRate)
	}

	if c.Environment != "development" {
		if c.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", c.Environment)
		}
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters long, got %d", len(c.JWTSecret))
		}
	}
	return nil
}

// Postgres returns the connection pool settings.
func (c *Config) Postgres() database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPass
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSL
	pg.MaxConns = c.PostgresMaxConns
	pg.MinConns = c.PostgresMinConns
	return pg
}

// Redis returns the Redis client settings.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// SummaryShape returns the validated topic summary shape.
func (c *Config) SummaryShape() domain.SummaryShape {
	shape, _ := domain.ParseSummaryShape(c.TopicSummaryShape)
	return shape
}
