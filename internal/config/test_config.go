package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads the configuration from the .env file or environment variables for integration tests
// If the TEST_DB_* variables are not set, returns a Config with empty database values
// which allows tests to use fallback DSN values
func LoadTestConfig() (*Config, error) {
	// Try loading from project root (ignore error if file doesn't exist - it's optional)
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.JWT.Secret = stringFromEnv("TEST_JWT_SECRET", "integration-test-secret")
	cfg.JWT.TokenExpiry = 24 * time.Hour
	cfg.Security.BcryptCost = 4
	cfg.Upload.MaxFileSize = 10 << 20

	dbHost := os.Getenv("TEST_DB_HOST")
	if dbHost == "" {
		// Return config without database to allow fallback DSN in tests
		return cfg, nil
	}
	cfg.Database.Host = dbHost

	dbPortStr := os.Getenv("TEST_DB_PORT")
	if dbPortStr == "" {
		return cfg, nil
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid TEST_DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	cfg.Database.User = os.Getenv("TEST_DB_USER")
	cfg.Database.Password = os.Getenv("TEST_DB_PASSWORD")
	cfg.Database.DBName = os.Getenv("TEST_DB_NAME")

	return cfg, nil
}
