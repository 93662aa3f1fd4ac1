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

// ValidationErrors collects every problem found in one pass
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors

	if cfg.ServerPort == "" {
		errs = append(errs, ValidationError{Field: "SERVER_PORT", Message: "must not be empty"})
	}

	switch cfg.StorageDriver {
	case DriverMemory:
		if cfg.Environment == Production {
			errs = append(errs, ValidationError{Field: "STORAGE_DRIVER", Message: "memory storage does not survive restarts and is not allowed in production"})
		}
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{Field: "SQLITE_PATH", Message: "required for sqlite storage"})
		}
	case DriverPostgres:
		for field, value := range map[string]string{"DB_HOST": cfg.DBHost, "DB_NAME": cfg.DBName, "DB_USER": cfg.DBUser} {
			if value == "" {
				errs = append(errs, ValidationError{Field: field, Message: "required for postgres storage"})
			}
		}
	case DriverRedis:
		if cfg.RedisURL == "" && cfg.RedisHost == "" {
			errs = append(errs, ValidationError{Field: "REDIS_URL", Message: "REDIS_URL or REDIS_HOST is required for redis storage"})
		}
	default:
		errs = append(errs, ValidationError{Field: "STORAGE_DRIVER", Message: fmt.Sprintf("unknown driver %q", cfg.StorageDriver)})
	}

	if cfg.StorageKey == "" {
		errs = append(errs, ValidationError{Field: "STORAGE_KEY", Message: "must not be empty"})
	}
	if cfg.ImageMaxRetries < 0 {
		errs = append(errs, ValidationError{Field: "IMAGE_MAX_RETRIES", Message: "must not be negative"})
	}
	if cfg.RateLimitEnabled && cfg.RateLimitPerHour <= 0 {
		errs = append(errs, ValidationError{Field: "RATE_LIMIT_PER_HOUR", Message: "must be positive when rate limiting is enabled"})
	}

	// Secrets only have to be present where no local fallback is acceptable
	if cfg.Environment.Strict() {
		if cfg.JWTSecret == "" {
			errs = append(errs, ValidationError{Field: "JWT_SECRET", Message: "required secret jwt_secret is not set"})
		}
		if cfg.LLMAPIKey == "" {
			errs = append(errs, ValidationError{Field: "LLM_API_KEY", Message: "required secret llm_api_key is not set"})
		}
		if cfg.StorageDriver == DriverPostgres && cfg.DBPassword == "" {
			errs = append(errs, ValidationError{Field: "DB_PASSWORD", Message: "required secret db_password is not set"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
