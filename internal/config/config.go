package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Env        string
	ListenAddr string

	DatabaseURL string

	// RedisAddr is optional; when empty the in-process store is used.
	RedisAddr     string
	RedisPassword string

	// API credentials for the two metric APIs. Validated by the
	// orchestrator before any audit runs.
	PSIAPIKey  string
	CruxAPIKey string

	// AuditWorkers > 0 starts the background job pool.
	AuditWorkers int
}

func Load() (Config, error) {
	cfg := Config{
		Env:           getenv("APP_ENV", "development"),
		ListenAddr:    getenv("LISTEN_ADDR", ":8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		PSIAPIKey:     os.Getenv("PSI_API_KEY"),
		CruxAPIKey:    os.Getenv("CRUX_API_KEY"),
		AuditWorkers:  getenvInt("AUDIT_WORKERS", 0),
	}
	if cfg.DatabaseURL == "" {
		// Not fatal for early local runs; warn via error value so callers can decide.
		return cfg, fmt.Errorf("DATABASE_URL not set")
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if out, err := strconv.Atoi(v); err == nil {
			return out
		}
	}
	return def
}
