package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Table runner
	TickHz             int
	BroadcastHz        int
	RoundPauseMs       int
	TableIdleMinutes   int
	SnapshotTTLMinutes int
	MaxTables          int

	// Security
	JWTSecret        string
	TicketTTLMinutes int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Redis (empty disables snapshots and event fan-out)
		RedisURL: getEnv("REDIS_URL", ""),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Table runner
		TickHz:             getEnvInt("TICK_HZ", 60),
		BroadcastHz:        getEnvInt("BROADCAST_HZ", 30),
		RoundPauseMs:       getEnvInt("ROUND_PAUSE_MS", 1500),
		TableIdleMinutes:   getEnvInt("TABLE_IDLE_MINUTES", 30),
		SnapshotTTLMinutes: getEnvInt("SNAPSHOT_TTL_MINUTES", 30),
		MaxTables:          getEnvInt("MAX_TABLES", 200),

		// Security
		JWTSecret:        getEnv("JWT_SECRET", "change-me-in-production"),
		TicketTTLMinutes: getEnvInt("TICKET_TTL_MINUTES", 120),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
