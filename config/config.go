package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerHost string
	ServerPort string

	// PublicBaseURL is the URL the front end uses to reach this API.
	PublicBaseURL string

	// CORSOrigins is the list of allowed browser origins.
	CORSOrigins []string

	// Database configuration
	DatabaseURL string

	// Redis configuration (optional; stats caching only)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// Recipe generation provider (OpenAI-compatible chat completions).
	// An empty key disables generation entirely.
	OpenAIAPIKey string
	OpenAIAPIURL string

	// Image search provider. An empty key falls back to placeholder images.
	UnsplashAccessKey string
	UnsplashAPIURL    string
}

// Load creates a new Config instance from environment variables. Secrets may
// alternatively be supplied through *_FILE variables pointing at files.
func Load() (*Config, error) {
	cfg := &Config{
		ServerHost:        os.Getenv("SERVER_HOST"),
		ServerPort:        getenvDefault("PORT", "8080"),
		PublicBaseURL:     os.Getenv("PUBLIC_BASE_URL"),
		DatabaseURL:       getenvOrFile("DATABASE_URL"),
		RedisHost:         getenvDefault("REDIS_HOST", "localhost"),
		RedisPort:         getenvDefault("REDIS_PORT", "6379"),
		RedisPassword:     getenvOrFile("REDIS_PASSWORD"),
		RedisURL:          os.Getenv("REDIS_URL"),
		JWTSecret:         getenvOrFile("JWT_SECRET"),
		OpenAIAPIKey:      getenvOrFile("OPENAI_API_KEY"),
		OpenAIAPIURL:      getenvDefault("OPENAI_API_URL", "https://api.openai.com/v1/chat/completions"),
		UnsplashAccessKey: getenvOrFile("UNSPLASH_ACCESS_KEY"),
		UnsplashAPIURL:    getenvDefault("UNSPLASH_API_URL", "https://api.unsplash.com/search/photos"),
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		db, err := strconv.Atoi(dbStr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
		cfg.RedisDB = db
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must be set")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	return nil
}

// RedisAddr returns the host:port address for the Redis client.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getenvOrFile reads a value from the environment, falling back to the file
// named by <key>_FILE (Docker secrets).
func getenvOrFile(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if path := os.Getenv(key + "_FILE"); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			return strings.TrimSpace(string(data))
		}
	}
	return ""
}
