package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the charter service.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"charter-api"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"CHARTER_API_PORT" envDefault:"8290"`
	LogLevel        string        `env:"CHARTER_LOG_LEVEL" envDefault:"info"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Database (required, no default)
	DBPostgresqlWriteDSN string `env:"DB_POSTGRESQL_WRITE_DSN,notEmpty"`

	// Database Connection Pool
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// Storage Backend Selection
	StorageBackend string `env:"CHARTER_STORAGE_BACKEND" envDefault:"s3"` // Options: "s3" or "local"

	// Local Storage Configuration
	LocalStoragePath    string `env:"CHARTER_LOCAL_STORAGE_PATH"`
	LocalStorageBaseURL string `env:"CHARTER_LOCAL_STORAGE_BASE_URL"`

	// S3 Storage Configuration
	S3Endpoint     string `env:"CHARTER_S3_ENDPOINT"`
	S3Region       string `env:"CHARTER_S3_REGION" envDefault:"us-east-1"`
	S3Bucket       string `env:"CHARTER_S3_BUCKET"`
	S3AccessKeyID  string `env:"CHARTER_S3_ACCESS_KEY_ID"`
	S3SecretKey    string `env:"CHARTER_S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle bool   `env:"CHARTER_S3_USE_PATH_STYLE" envDefault:"true"`
	S3PublicBase   string `env:"CHARTER_S3_PUBLIC_BASE_URL"`

	// Media ingestion
	MaxMediaBytes       int64         `env:"CHARTER_MEDIA_MAX_BYTES" envDefault:"209715200"`
	ImageInlineMaxBytes int64         `env:"CHARTER_IMAGE_INLINE_MAX_BYTES" envDefault:"4194304"`
	DispatchTimeout     time.Duration `env:"CHARTER_DISPATCH_TIMEOUT" envDefault:"30s"`
	TranscodeTimeout    time.Duration `env:"CHARTER_TRANSCODE_TIMEOUT" envDefault:"10m"`

	// Transcode worker
	WorkerQueueURL     string        `env:"CHARTER_WORKER_QUEUE_URL"`
	WorkerQueueToken   string        `env:"CHARTER_WORKER_QUEUE_TOKEN"`
	TranscodeEngineURL string        `env:"CHARTER_TRANSCODE_ENGINE_URL"`
	EngineTimeout      time.Duration `env:"CHARTER_ENGINE_TIMEOUT" envDefault:"8m"`

	// Finalize
	MinGalleryImages   int           `env:"CHARTER_MIN_GALLERY_IMAGES" envDefault:"3"`
	FinalizeRateLimit  int           `env:"CHARTER_FINALIZE_RATE_LIMIT" envDefault:"5"`
	FinalizeRateWindow time.Duration `env:"CHARTER_FINALIZE_RATE_WINDOW" envDefault:"10m"`

	// Authentication
	AuthEnabled bool   `env:"AUTH_ENABLED" envDefault:"false"`
	AuthIssuer  string `env:"AUTH_ISSUER"`
	AuthJWKSURL string `env:"AUTH_JWKS_URL"`
	AdminRole   string `env:"AUTH_ADMIN_ROLE" envDefault:"admin"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.S3Bucket = strings.TrimSpace(cfg.S3Bucket)
	cfg.S3AccessKeyID = strings.TrimSpace(cfg.S3AccessKeyID)
	cfg.S3SecretKey = strings.TrimSpace(cfg.S3SecretKey)
	cfg.S3Endpoint = strings.TrimSpace(cfg.S3Endpoint)
	if cfg.MaxMediaBytes <= 0 {
		cfg.MaxMediaBytes = 200 * 1024 * 1024
	}
	if cfg.ImageInlineMaxBytes <= 0 {
		cfg.ImageInlineMaxBytes = 4 * 1024 * 1024
	}
	if cfg.MinGalleryImages <= 0 {
		cfg.MinGalleryImages = 3
	}
	if cfg.AuthEnabled {
		if strings.TrimSpace(cfg.AuthIssuer) == "" {
			return nil, fmt.Errorf("AUTH_ISSUER is required when AUTH_ENABLED is true")
		}
		if strings.TrimSpace(cfg.AuthJWKSURL) == "" {
			return nil, fmt.Errorf("AUTH_JWKS_URL is required when AUTH_ENABLED is true")
		}
	}
	return cfg, nil
}

// GetDatabaseWriteDSN returns the write database connection string.
func (c *Config) GetDatabaseWriteDSN() string {
	return c.DBPostgresqlWriteDSN
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsLocalStorage returns true if local storage backend is configured.
func (c *Config) IsLocalStorage() bool {
	return strings.ToLower(strings.TrimSpace(c.StorageBackend)) == "local"
}
