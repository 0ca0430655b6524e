package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverDisk = "disk"
	StorageDriverS3   = "s3"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret string
	JWTExpiry time.Duration

	// Uploads
	MaxUploadFiles int
	MaxUploadBytes int64

	// Observability (optional)
	SentryDSN string

	// Storage: "disk" keeps files under StorageRoot, "s3" pushes them to an S3-compatible bucket.
	// Both drivers stage incoming uploads under StorageRoot/tmp.
	StorageDriver         string
	StorageRoot           string
	S3Region              string
	S3Bucket              string
	S3AccessKey           string
	S3SecretKey           string
	S3Endpoint            string        // Optional: for S3-compatible services (MinIO, DO Spaces, R2, etc.)
	S3PresignExpiryPublic time.Duration // Expiry for listing image URLs - default: 7 days
}

// Load reads the server configuration. JWT_SECRET is required.
func Load() *Config {
	return load(true)
}

// LoadMaintenance reads the configuration for offline tooling (migrations,
// seeding, sweeps), which never issues or verifies tokens.
func LoadMaintenance() *Config {
	return load(false)
}

func load(requireSecrets bool) *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		AppName: envString("APP_NAME", "Marketplace"),
		AppEnv:  envString("APP_ENV", "development"),
		AppURL:  envString("APP_URL", "http://localhost:3333"),
		Port:    envString("PORT", "3333"),

		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/marketplace.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		JWTSecret: envString("JWT_SECRET", ""),
		JWTExpiry: envDuration("JWT_EXPIRY", 24*time.Hour),

		MaxUploadFiles: envInt("MAX_UPLOAD_FILES", 6),
		MaxUploadBytes: int64(envInt("MAX_UPLOAD_BYTES", 5<<20)),

		SentryDSN: envString("SENTRY_DSN", ""),

		StorageDriver:         envString("STORAGE_DRIVER", StorageDriverDisk),
		StorageRoot:           envString("STORAGE_ROOT", "./data/files"),
		S3Region:              envString("S3_REGION", "us-east-1"),
		S3Bucket:              envString("S3_BUCKET", ""),
		S3AccessKey:           envString("S3_ACCESS_KEY", ""),
		S3SecretKey:           envString("S3_SECRET_KEY", ""),
		S3Endpoint:            envString("S3_ENDPOINT", ""),
		S3PresignExpiryPublic: envDuration("S3_PRESIGN_EXPIRY_PUBLIC", 168*time.Hour),
	}

	if requireSecrets && cfg.JWTSecret == "" {
		cfg.JWTSecret = envRequired("JWT_SECRET")
	}

	if cfg.StorageDriver == StorageDriverS3 {
		validateS3(cfg)
	}

	return cfg
}

// validateS3 exits when the s3 driver is selected without a bucket.
func validateS3(cfg *Config) {
	if cfg.S3Bucket == "" {
		slog.Error("STORAGE_DRIVER=s3 requires S3_BUCKET",
			"hint", "set STORAGE_DRIVER=disk to keep images on the local filesystem")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
