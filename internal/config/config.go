package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL string
	Port        string
	JWTSecret   string

	// Firebase credentials: base64 JSON wins over the file path
	FirebaseCredentialsBase64 string
	FirebaseCredentialsFile   string

	SchedulerEnabled bool
	SweepInterval    time.Duration
	BinAlertInterval time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		DatabaseURL:               getEnv("DATABASE_URL", ""),
		Port:                      getEnv("PORT", "8080"),
		JWTSecret:                 getEnv("APP_JWT_SECRET", ""),
		FirebaseCredentialsBase64: getEnv("FIREBASE_CREDENTIALS_BASE64", ""),
		FirebaseCredentialsFile:   getEnv("FIREBASE_CREDENTIALS_FILE", "./firebase-service-account.json"),
		SchedulerEnabled:          getBool("SCHEDULER_ENABLED", true),
		SweepInterval:             getDuration("SWEEP_INTERVAL", 24*time.Hour),
		BinAlertInterval:          getDuration("BIN_ALERT_INTERVAL", time.Hour),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("⚠️  Invalid %s=%q, using default %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		log.Printf("⚠️  Invalid %s=%q, using default %s", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
