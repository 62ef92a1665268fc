package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all engine configuration, loaded once from environment
// variables with sensible defaults.
type Config struct {
	Store   StoreConfig
	Ingest  IngestConfig
	Log     LogConfig
	Backup  BackupConfig
}

// StoreConfig controls the on-disk GeometryStore file and its
// housekeeping thresholds — spec.md §4.C.
type StoreConfig struct {
	Dir                string
	FileName           string
	SizeLimitBytes     int64
	SizeTargetBytes    int64
	EvictionBatchSize  int
	GeometryTTL        time.Duration
	TileMetadataTTL    time.Duration
}

// IngestConfig controls the Ingestor's HTTP behavior — spec.md §4.E.
type IngestConfig struct {
	BaseURL         string
	Timeout         time.Duration
	RetryAttempts   int
	RetryBaseDelay  time.Duration
	StalenessWindow time.Duration
}

// LogConfig controls structured logging — SPEC_FULL ambient stack.
type LogConfig struct {
	Level string
	Dir   string
}

// BackupConfig controls the optional S3 snapshot feature — SPEC_FULL
// domain stack. Empty Bucket disables the feature entirely.
type BackupConfig struct {
	Bucket string
	Region string
	Prefix string
}

// Load reads configuration from environment variables with sensible
// defaults, matching the teacher's flat getEnv/getEnvInt helpers.
func Load() *Config {
	return &Config{
		Store: StoreConfig{
			Dir:               getEnv("AIRSPACE_CACHE_DIR", "."),
			FileName:          getEnv("AIRSPACE_CACHE_FILE", "airspace_cache.db"),
			SizeLimitBytes:    getEnvInt64("AIRSPACE_CACHE_SIZE_LIMIT_BYTES", 100*1024*1024),
			SizeTargetBytes:   getEnvInt64("AIRSPACE_CACHE_SIZE_TARGET_BYTES", 80*1024*1024),
			EvictionBatchSize: getEnvInt("AIRSPACE_CACHE_EVICTION_BATCH", 50),
			GeometryTTL:       getEnvDuration("AIRSPACE_CACHE_GEOMETRY_TTL", 7*24*time.Hour),
			TileMetadataTTL:   getEnvDuration("AIRSPACE_CACHE_TILE_TTL", 24*time.Hour),
		},
		Ingest: IngestConfig{
			BaseURL:         getEnv("AIRSPACE_INGEST_BASE_URL", "https://api.openaip.net/airspaces"),
			Timeout:         getEnvDuration("AIRSPACE_INGEST_TIMEOUT", 2*time.Minute),
			RetryAttempts:   getEnvInt("AIRSPACE_INGEST_RETRY_ATTEMPTS", 3),
			RetryBaseDelay:  getEnvDuration("AIRSPACE_INGEST_RETRY_BASE_DELAY", time.Second),
			StalenessWindow: getEnvDuration("AIRSPACE_INGEST_STALENESS_WINDOW", 30*24*time.Hour),
		},
		Log: LogConfig{
			Level: getEnv("AIRSPACE_LOG_LEVEL", "info"),
			Dir:   getEnv("AIRSPACE_LOG_DIR", ""),
		},
		Backup: BackupConfig{
			Bucket: getEnv("AIRSPACE_BACKUP_S3_BUCKET", ""),
			Region: getEnv("AIRSPACE_BACKUP_S3_REGION", "us-east-1"),
			Prefix: getEnv("AIRSPACE_BACKUP_S3_PREFIX", "airspace-cache"),
		},
	}
}

// getEnv gets an environment variable with a fallback default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a fallback default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Printf("Warning: invalid integer value for %s: %s, using default %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvInt64 gets an int64 environment variable with a fallback default value.
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
		log.Printf("Warning: invalid integer value for %s: %s, using default %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable (Go duration
// syntax, e.g. "2m") with a fallback default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Warning: invalid duration value for %s: %s, using default %s", key, value, defaultValue)
	}
	return defaultValue
}

// Validate checks required configuration invariants.
func (c *Config) Validate() error {
	if c.Store.SizeTargetBytes > c.Store.SizeLimitBytes {
		log.Printf("Warning: size target (%d) exceeds size limit (%d); clamping", c.Store.SizeTargetBytes, c.Store.SizeLimitBytes)
		c.Store.SizeTargetBytes = c.Store.SizeLimitBytes
	}
	return nil
}
