package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the immutable process configuration. It is constructed once in
// main and handed to the components that need it; nothing reads the
// environment after startup.
type Config struct {
	DBPath       string
	DavUser      string
	DavPass      string
	Timeout      int // seconds, per outbound request
	Port         string
	SyncInterval int // minutes between background sync runs, 0 disables
	SeedPath     string
	LogLevel     string
	Environment  string
}

// LoadConfig reads the .env file (when present) and the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	config := &Config{}

	config.DBPath = getEnvWithDefault("DB_PATH", "./picmap.db")
	config.DavUser = os.Getenv("DAV_USER")
	config.DavPass = os.Getenv("DAV_PASS")
	config.Port = getEnvWithDefault("PORT", "8080")
	config.SeedPath = os.Getenv("SEED_PATH")
	config.LogLevel = getEnvWithDefault("LOG_LEVEL", "INFO")
	config.Environment = getEnvWithDefault("ENVIRONMENT", "development")

	timeout, err := strconv.Atoi(getEnvWithDefault("TIMEOUT", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEOUT: %v", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("TIMEOUT must be positive, got %d", timeout)
	}
	config.Timeout = timeout

	interval, err := strconv.Atoi(getEnvWithDefault("SYNC_INTERVAL", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_INTERVAL: %v", err)
	}
	if interval < 0 {
		return nil, fmt.Errorf("SYNC_INTERVAL must not be negative, got %d", interval)
	}
	config.SyncInterval = interval

	return config, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
