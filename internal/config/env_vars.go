package config

import (
	"os"
	"time"
)

const (
	appNameVar        = "APP_NAME"
	apiBaseURLVar     = "API_BASE_URL"
	requestTimeoutVar = "REQUEST_TIMEOUT"
	storageBackendVar = "STORAGE_BACKEND"
	folderEnvVar      = "FOLDER"
	redisURLVar       = "REDIS_URL"
)

type EnvVars struct{}

var _ Config = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Storefront")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetAPIBaseURL returns the storefront service's base URL; all endpoints live
// under its /api path.
func (EnvVars) GetAPIBaseURL() string {
	return GetEnv(apiBaseURLVar, "http://localhost:8080")
}

func (EnvVars) GetRequestTimeout() time.Duration {
	raw := GetEnv(requestTimeoutVar, "15s")
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

func (EnvVars) GetStorageBackend() string {
	return GetEnv(storageBackendVar, StorageBackendFile)
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, "./data")
}

func (EnvVars) GetRedisURL() string {
	return GetEnv(redisURLVar, "redis://localhost:6379/0")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
