package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port                 string
	AllowedOrigins       []string
	FrontendURL          string
	Environment          string
	DatabaseURL          string
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetimeMin int
	RedisURL             string
	RedisPassword        string
	SnapshotTTL          time.Duration
	JWTSecret            string
	SessionTokenTTL      time.Duration
	AnimationDelay       time.Duration
	DebounceWindow       time.Duration
	MessageTimeout       time.Duration
	SessionIdleTimeout   time.Duration
	CleanupInterval      time.Duration
}

var AppConfig *Config

func LoadConfig() *Config {
	port := GetEnv("PORT", "8080")

	// Frontend & CORS
	frontendURL := GetEnv("FRONTEND_URL", "http://localhost:5173")
	allowedOrigins := []string{frontendURL}
	if extras := GetEnv("ALLOWED_ORIGINS", ""); extras != "" {
		for _, origin := range strings.Split(extras, ",") {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				allowedOrigins = append(allowedOrigins, trimmed)
			}
		}
	}

	AppConfig = &Config{
		Port:                 port,
		AllowedOrigins:       allowedOrigins,
		FrontendURL:          frontendURL,
		Environment:          GetEnv("ENVIRONMENT", "development"),
		DatabaseURL:          GetEnv("DATABASE_URL", ""),
		DBMaxOpenConns:       GetEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:       GetEnvAsInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetimeMin: GetEnvAsInt("DB_CONN_MAX_LIFETIME_MINUTES", 5),
		RedisURL:             GetEnv("REDIS_URL", ""),
		RedisPassword:        GetEnv("REDIS_PASSWORD", ""),
		SnapshotTTL:          GetEnvAsDuration("SNAPSHOT_TTL_MINUTES", 60, time.Minute),
		JWTSecret:            GetEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
		SessionTokenTTL:      GetEnvAsDuration("SESSION_TOKEN_TTL_MINUTES", 720, time.Minute),
		AnimationDelay:       GetEnvAsDuration("ANIMATION_DELAY_MS", 600, time.Millisecond),
		DebounceWindow:       GetEnvAsDuration("DEBOUNCE_WINDOW_MS", 300, time.Millisecond),
		MessageTimeout:       GetEnvAsDuration("MESSAGE_TIMEOUT_MS", 2000, time.Millisecond),
		SessionIdleTimeout:   GetEnvAsDuration("SESSION_IDLE_TIMEOUT_MINUTES", 60, time.Minute),
		CleanupInterval:      GetEnvAsDuration("CLEANUP_INTERVAL_MINUTES", 10, time.Minute),
	}

	return AppConfig
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

// GetEnvAsDuration reads an integer count of unit. Negative values fall back to the default.
func GetEnvAsDuration(key string, defaultValue int, unit time.Duration) time.Duration {
	value := GetEnvAsInt(key, defaultValue)
	if value < 0 {
		log.Printf("Negative value for %s: %d, using default: %d", key, value, defaultValue)
		value = defaultValue
	}
	return time.Duration(value) * unit
}
