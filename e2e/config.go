//go:build e2e

package e2e

import (
	"os"
	"strconv"
	"time"
)

// Config holds the configuration for E2E tests.
type Config struct {
	Timeout    time.Duration
	StorageID  string // storage to list files on, skipped when empty
	UploadPath string // API path to upload to, e.g. import/raw; skipped when empty
	ChunkSize  int64
}

// LoadConfig loads E2E test configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Timeout:    getTimeoutFromEnv("VIDISPINE_E2E_TIMEOUT", 120*time.Second),
		StorageID:  os.Getenv("VIDISPINE_E2E_STORAGE"),
		UploadPath: os.Getenv("VIDISPINE_E2E_UPLOAD_PATH"),
		ChunkSize:  getInt64FromEnv("VIDISPINE_E2E_CHUNK_SIZE", 64*1024),
	}
}

func getTimeoutFromEnv(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return d
}

func getInt64FromEnv(key string, defaultValue int64) int64 {
	n, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return defaultValue
	}
	return n
}
