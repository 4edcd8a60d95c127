package config

import (
	"fmt"
	"strconv"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks the loaded configuration before any component
// consumes it. Database credentials and the JWT secret are required
// everywhere; Redis is optional (the blacklist and rate limiter degrade
// without it).
func ValidateConfig(cfg *Config) error {
	if cfg.DBUser == "" {
		return ValidationError{Field: "DB_USER", Message: "is required"}
	}
	if cfg.DBName == "" {
		return ValidationError{Field: "DB_NAME", Message: "is required"}
	}
	if cfg.JWTSecret == "" {
		return ValidationError{Field: "JWT_SECRET", Message: "is required"}
	}
	if IsProduction() && cfg.DBPassword == "" {
		return ValidationError{Field: "DB_PASSWORD", Message: "is required in production"}
	}
	if _, err := strconv.Atoi(cfg.ServerPort); err != nil {
		return ValidationError{Field: "SERVER_PORT", Message: "must be numeric"}
	}
	return nil
}
