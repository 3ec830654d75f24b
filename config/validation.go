package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that every field the server cannot run without is
// present. Production additionally refuses the development JWT secret.
func ValidateConfig(cfg *Config) error {
	var problems []string

	required := map[string]string{
		"SERVER_PORT": cfg.ServerPort,
		"DB_HOST":     cfg.DBHost,
		"DB_PORT":     cfg.DBPort,
		"DB_USER":     cfg.DBUser,
		"DB_NAME":     cfg.DBName,
		"JWT_SECRET":  cfg.JWTSecret,
	}
	for field, value := range required {
		if value == "" {
			problems = append(problems, ValidationError{Field: field, Message: "is required"}.Error())
		}
	}

	if IsProduction() {
		if cfg.DBPassword == "" {
			problems = append(problems, ValidationError{Field: "DB_PASSWORD", Message: "is required in production"}.Error())
		}
		if cfg.JWTSecret == "dev-secret" {
			problems = append(problems, ValidationError{Field: "JWT_SECRET", Message: "must not use the development default in production"}.Error())
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
