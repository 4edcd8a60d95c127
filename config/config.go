package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// Media storage. When S3Bucket is empty, images land in MediaDir and
	// are served under MediaBaseURL.
	MediaDir     string
	MediaBaseURL string
	S3Bucket     string
}

// LoadConfig creates a new Config instance with values from the
// environment. In development a .env file is merged in first when one is
// present.
func LoadConfig() (*Config, error) {
	if IsDevelopment() {
		// Missing .env is fine; env vars may be set directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		ServerPort:    getenvDefault("SERVER_PORT", "8080"),
		ServerHost:    getenvDefault("SERVER_HOST", "0.0.0.0"),
		DBHost:        getenvDefault("DB_HOST", "localhost"),
		DBPort:        getenvDefault("DB_PORT", "5432"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		DBSSLMode:     getenvDefault("DB_SSL_MODE", "disable"),
		RedisHost:     getenvDefault("REDIS_HOST", "localhost"),
		RedisPort:     getenvDefault("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisURL:      os.Getenv("REDIS_URL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		MediaDir:      getenvDefault("MEDIA_DIR", "media"),
		MediaBaseURL:  getenvDefault("MEDIA_BASE_URL", "/media"),
		S3Bucket:      os.Getenv("S3_BUCKET_NAME"),
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
