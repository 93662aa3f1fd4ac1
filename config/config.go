package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers accepted by StorageDriver.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// devJWTSecret signs session tokens when no secret is configured outside
// strict environments.
const devJWTSecret = "pantry-chef-dev-secret"

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerHost      string
	ServerPort      string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration

	// Logging configuration
	LogLevel  string
	LogFormat string

	// Durable storage configuration
	StorageDriver string
	StorageKey    string
	SQLitePath    string

	// In-memory session stores unused for SessionIdleTTL are dropped; 0 keeps them
	SessionIdleTTL time.Duration

	// Database configuration (postgres driver)
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

	// Text generation
	LLMAPIURL      string
	LLMAPIKey      string
	LLMModel       string
	LLMTemperature float64

	// Image generation
	ImageEnabled    bool
	ImageAPIURL     string
	ImageAPIKey     string
	ImageModel      string
	ImageSize       string
	ImageMaxRetries int

	// Timeout applied by the collaborators' HTTP clients
	GenerationTimeout time.Duration

	// S3 re-hosting of generated images; disabled when S3Bucket is empty
	S3Bucket  string
	AWSRegion string

	// Session tokens
	JWTSecret  string
	SessionTTL time.Duration

	// Rate limiting of generation endpoints
	RateLimitEnabled bool
	RateLimitPerHour int
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	v := newViper()

	cfg := &Config{
		Environment:       env,
		ServerHost:        v.GetString("server_host"),
		ServerPort:        v.GetString("server_port"),
		AllowedOrigins:    splitList(v.GetString("allowed_origins")),
		ShutdownTimeout:   v.GetDuration("shutdown_timeout"),
		LogLevel:          v.GetString("log_level"),
		LogFormat:         v.GetString("log_format"),
		StorageDriver:     strings.ToLower(v.GetString("storage_driver")),
		StorageKey:        v.GetString("storage_key"),
		SQLitePath:        v.GetString("sqlite_path"),
		SessionIdleTTL:    v.GetDuration("session_idle_ttl"),
		DBHost:            v.GetString("db_host"),
		DBPort:            v.GetString("db_port"),
		DBUser:            v.GetString("db_user"),
		DBName:            v.GetString("db_name"),
		DBSSLMode:         v.GetString("db_ssl_mode"),
		RedisHost:         v.GetString("redis_host"),
		RedisPort:         v.GetString("redis_port"),
		RedisDB:           v.GetInt("redis_db"),
		RedisURL:          v.GetString("redis_url"),
		LLMAPIURL:         v.GetString("llm_api_url"),
		LLMModel:          v.GetString("llm_model"),
		LLMTemperature:    v.GetFloat64("llm_temperature"),
		ImageEnabled:      v.GetBool("image_enabled"),
		ImageAPIURL:       v.GetString("image_api_url"),
		ImageModel:        v.GetString("image_model"),
		ImageSize:         v.GetString("image_size"),
		ImageMaxRetries:   v.GetInt("image_max_retries"),
		GenerationTimeout: v.GetDuration("generation_timeout"),
		S3Bucket:          v.GetString("s3_bucket_name"),
		AWSRegion:         v.GetString("aws_region"),
		SessionTTL:        v.GetDuration("session_ttl"),
		RateLimitEnabled:  v.GetBool("rate_limit_enabled"),
		RateLimitPerHour:  v.GetInt("rate_limit_per_hour"),
	}

	// Sensitive values: environment variable, then NAME_FILE, then Docker secret
	cfg.DBPassword = resolveSecret("db_password")
	cfg.RedisPassword = resolveSecret("redis_password")
	cfg.LLMAPIKey = resolveSecret("llm_api_key")
	cfg.ImageAPIKey = resolveSecret("image_api_key")
	if cfg.ImageAPIKey == "" {
		cfg.ImageAPIKey = cfg.LLMAPIKey
	}
	cfg.JWTSecret = resolveSecret("jwt_secret")
	if cfg.JWTSecret == "" && !env.Strict() {
		cfg.JWTSecret = devJWTSecret
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed:\n%w", err)
	}

	return cfg, nil
}

// Addr returns the listen address of the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server_host", "")
	v.SetDefault("server_port", "8080")
	v.SetDefault("allowed_origins", "http://localhost:3000,http://localhost:9002")
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("storage_driver", DriverSQLite)
	v.SetDefault("storage_key", "pantryChef_savedRecipes")
	v.SetDefault("sqlite_path", "pantry-chef.db")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_ssl_mode", "disable")
	v.SetDefault("redis_host", "localhost")
	v.SetDefault("redis_port", "6379")
	v.SetDefault("redis_db", 0)
	v.SetDefault("llm_api_url", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("llm_model", "gpt-4o-mini")
	v.SetDefault("llm_temperature", 0.8)
	v.SetDefault("image_enabled", true)
	v.SetDefault("image_api_url", "https://api.openai.com/v1/images/generations")
	v.SetDefault("image_model", "dall-e-3")
	v.SetDefault("image_size", "1024x1024")
	v.SetDefault("image_max_retries", 2)
	v.SetDefault("generation_timeout", 60*time.Second)
	v.SetDefault("session_ttl", 30*24*time.Hour)
	v.SetDefault("session_idle_ttl", 30*time.Minute)
	v.SetDefault("rate_limit_enabled", true)
	v.SetDefault("rate_limit_per_hour", 30)

	return v
}

// resolveSecret looks a sensitive value up as NAME, then as a file named by
// NAME_FILE, then as a Docker secret.
func resolveSecret(name string) string {
	envName := strings.ToUpper(name)
	if value := strings.TrimSpace(os.Getenv(envName)); value != "" {
		return value
	}
	if path := os.Getenv(envName + "_FILE"); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			return strings.TrimSpace(string(data))
		}
	}
	return readSecret(name)
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
