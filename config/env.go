package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a .env file if one is present. Missing files
// are fine; deployed environments inject config directly.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		GetLogger().Info("No .env file found, using environment variables")
	}
}

// GetEnv returns the value of an environment variable or a fallback
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// IsProduction reports whether the app is running with APP_ENV=production
func IsProduction() bool {
	return GetEnv("APP_ENV", "development") == "production"
}
