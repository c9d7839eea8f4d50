// Package config loads worker configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
)

const defaultBaseURL = "https://github.com/AarthiHonguthi/ad-analytics/raw/main/dbt/seeds/imdb_movie_dataset"

// Config holds every runtime setting. It is resolved once at process start
// and threaded into the steps explicitly, so individual steps stay testable
// without environment lookups.
type Config struct {
	// Upstream dataset layout: {BaseURL}/{genre}.csv.
	BaseURL string

	// StagingRoot is the local staging directory;
	// artifacts land at {StagingRoot}/{genre}/{genre}.parquet.
	StagingRoot string

	// Warehouse settings. Tables are named {ProjectID}.{Dataset}.{genre}.
	ProjectID       string
	Dataset         string
	EnableLoad      bool
	WarehouseDriver string
	PostgresDSN     string

	// GenresFile optionally overrides the built-in genre list (YAML).
	GenresFile string

	// Object store mirror for staged artifacts; disabled when the endpoint
	// is empty.
	MirrorEndpoint  string
	MirrorBucket    string
	MirrorAccessKey string
	MirrorSecretKey string

	// Temporal settings. MaxConcurrentActivities of zero leaves the worker
	// at the SDK default.
	TemporalAddress         string
	TemporalNamespace       string
	TaskQueue               string
	MaxConcurrentActivities int
}

// Load reads configuration from environment variables, falling back to the
// documented defaults.
func Load() *Config {
	return &Config{
		BaseURL:                 getEnv("IMDB_BASE_URL", defaultBaseURL),
		StagingRoot:             getEnv("STAGING_ROOT", "/opt/ingest/fake_gcs"),
		ProjectID:               getEnv("GCP_PROJECT_ID", ""),
		Dataset:                 getEnv("BIGQUERY_DATASET", "imdb_dataset"),
		EnableLoad:              getEnvBool("ENABLE_BQ_LOAD", false),
		WarehouseDriver:         getEnv("WAREHOUSE_DRIVER", "bigquery"),
		PostgresDSN:             getEnv("POSTGRES_DSN", ""),
		GenresFile:              getEnv("GENRES_FILE", ""),
		MirrorEndpoint:          getEnv("MIRROR_ENDPOINT", ""),
		MirrorBucket:            getEnv("MIRROR_BUCKET", "imdb-staging"),
		MirrorAccessKey:         getEnv("MIRROR_ACCESS_KEY", ""),
		MirrorSecretKey:         getEnv("MIRROR_SECRET_KEY", ""),
		TemporalAddress:         getEnv("TEMPORAL_ADDRESS", "127.0.0.1:7233"),
		TemporalNamespace:       getEnv("TEMPORAL_NAMESPACE", "default"),
		TaskQueue:               getEnv("INGEST_TASK_QUEUE", "imdb-ingest"),
		MaxConcurrentActivities: getEnvInt("MAX_CONCURRENT_ACTIVITIES", 0),
	}
}

// Genres returns the configured genre list: the YAML file when set,
// otherwise the built-in list.
func (c *Config) Genres() ([]string, error) {
	if c.GenresFile == "" {
		return DefaultGenres(), nil
	}
	return LoadGenres(c.GenresFile)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return strings.EqualFold(val, "true")
	}
	return defaultVal
}
