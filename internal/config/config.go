package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPath        string
	DBLogLevel    string
	RedisHost     string
	RedisPort     string
	SessionStore  string
	SessionSecret string
	GinMode       string
	HTTPPort      string
	JWT           JWTConfig
	AuthCookie    string
	BcryptCost    int
	OpenAIAPIKey  string
	AdminEmails   []string
}

type JWTConfig struct {
	Secret              string
	Issuer              string
	AccessTokenDuration time.Duration
}

func Load() *Config {
	return &Config{
		DBDriver:      getEnv("DB_DRIVER", "sqlite"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "3306"),
		DBUser:        getEnv("DB_USER", "taskuser"),
		DBPassword:    getEnv("DB_PASSWORD", "taskpassword"),
		DBName:        getEnv("DB_NAME", "task_tracker"),
		DBPath:        getEnv("DB_PATH", "data/task_tracker.db"),
		DBLogLevel:    getEnv("DB_LOG_LEVEL", "warn"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		SessionStore:  getEnv("SESSION_STORE", "cookie"),
		SessionSecret: getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:       getEnv("GIN_MODE", "debug"),
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		JWT: JWTConfig{
			Secret:              getEnv("JWT_SECRET", getEnv("SECRET_KEY", "")),
			Issuer:              getEnv("JWT_ISSUER", "task-tracker"),
			AccessTokenDuration: getEnvAsDuration("JWT_ACCESS_TOKEN_DURATION", 30*time.Minute),
		},
		AuthCookie:   getEnv("AUTH_COOKIE_NAME", "access_token"),
		BcryptCost:   getEnvAsInt("BCRYPT_COST", 12),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		AdminEmails:  getEnvAsList("ADMIN_EMAILS"),
	}
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWT.AccessTokenDuration <= 0 {
		return fmt.Errorf("JWT_ACCESS_TOKEN_DURATION must be positive")
	}
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.SessionStore {
	case "cookie", "redis":
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q", c.SessionStore)
	}
	return nil
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	// Accept "30m"/"1h" as well as a bare number of minutes
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	if minutes, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blank items.
func getEnvAsList(key string) []string {
	var values []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			values = append(values, item)
		}
	}
	return values
}
