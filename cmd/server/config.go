package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application.
type Config struct {
	ServerAddr string

	// Persistence. Empty DSN runs with the in-memory audit store.
	PostgresDSN string

	// Session registry. Empty address keeps sessions in process.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// How long a disconnected player's seat is protected.
	DisconnectGrace time.Duration
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() Config {
	// Load .env file if it exists
	godotenv.Load()

	return Config{
		ServerAddr:      getEnv("SERVER_ADDR", ":8080"),
		PostgresDSN:     getEnv("POSTGRES_DSN", ""),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		DisconnectGrace: time.Duration(getEnvInt("DISCONNECT_GRACE_SECONDS", 5)) * time.Second,
	}
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
