package app

import (
	"os"
	"strconv"
)

// Config holds everything read from the environment.
type Config struct {
	Env  string // "dev" or "prod"
	Addr string

	// MaxHistory caps the in-memory message log per room; 0 keeps
	// everything.
	MaxHistory int

	// RedisAddr empty disables room persistence.
	RedisAddr string
	RedisDB   int
	RedisKey  string
}

// LoadConfig reads configuration from env vars with dev-friendly
// defaults. A .env file, if any, is loaded by main before this runs.
func LoadConfig() Config {
	return Config{
		Env:        getEnv("RELAY_ENV", "dev"),
		Addr:       getEnv("RELAY_ADDR", ":4000"),
		MaxHistory: getEnvInt("RELAY_MAX_HISTORY", 0),
		RedisAddr:  getEnv("REDIS_ADDR", ""),
		RedisDB:    getEnvInt("REDIS_DB", 0),
		RedisKey:   getEnv("REDIS_ROOMS_KEY", "rooms"),
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
