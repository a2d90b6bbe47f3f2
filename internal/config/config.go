package config

import "time"

// Storage backend selectors.
const (
	StorageBackendFile  = "file"
	StorageBackendRedis = "redis"
)

type Config interface {
	GetAppName() string
	GetEnv() string
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
	GetStorageBackend() string
	GetDataFolder() string
	GetRedisURL() string
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
