package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// apiPathSegment is the fixed suffix every backend base URL is normalized to.
const apiPathSegment = "/api/v1"

type Config struct {
	// Backend API
	APIBaseURL string
	APIOrigin  string

	// Redis (draft store)
	EnableRedis bool
	RedisURL    string

	// Server
	Port        string
	Environment string

	// CORS
	CORSOrigins []string

	// Upload intake
	MaxUploadSize     int64
	MaxVideoThumbSize int64

	// Session
	InactivityTimeoutMinutes int

	// Features
	EnableMetrics bool
}

func New() *Config {
	c := &Config{
		EnableRedis: getEnvAsBool("ENABLE_REDIS", true),
		RedisURL:    getEnv("REDIS_URL", "localhost:6379"),

		Port:        getEnv("PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),

		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"), ","),

		MaxUploadSize:     10 * 1024 * 1024, // 10MB
		MaxVideoThumbSize: 5 * 1024 * 1024,

		InactivityTimeoutMinutes: getEnvAsInt("SESSION_INACTIVITY_MINUTES", 30),

		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
	}

	c.APIBaseURL = NormalizeBaseURL(getEnv("API_BASE_URL", "http://localhost:8080"))
	c.APIOrigin = OriginOf(c.APIBaseURL)

	return c
}

// NormalizeBaseURL ensures the backend base URL always ends in the API path
// segment, regardless of how the environment spells it.
func NormalizeBaseURL(raw string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		trimmed = "http://localhost:8080"
	}
	if strings.HasSuffix(trimmed, apiPathSegment) {
		return trimmed
	}
	return trimmed + apiPathSegment
}

// OriginOf derives the scheme://host origin of a URL. Relative upload URLs
// returned by the backend are resolved against this origin.
func OriginOf(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return raw
	}
	return parsed.Scheme + "://" + parsed.Host
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var value int
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return valueStr == "true" || valueStr == "1"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
