package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ukydev/fleet-maintenance/internal/maintenance"
)

// Config holds all configuration for the API server
type Config struct {
	Port      string        `yaml:"port"`
	MongoURI  string        `yaml:"mongo_uri"`
	MongoDB   string        `yaml:"mongo_db"`
	JWTSecret string        `yaml:"-"`
	JWTExpiry time.Duration `yaml:"jwt_expiry"`

	RedisURL          string        `yaml:"redis_url"`
	DashboardCacheTTL time.Duration `yaml:"dashboard_cache_ttl"`

	MQTTBroker   string `yaml:"mqtt_broker"`
	MQTTClientID string `yaml:"mqtt_client_id"`
	MQTTTopic    string `yaml:"mqtt_topic"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`

	Windows       maintenance.Windows `yaml:"windows"`
	ActivityLimit int                 `yaml:"activity_limit"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:              "8080",
		MongoDB:           "fleet",
		JWTSecret:         "default-secret-key-change-in-production",
		JWTExpiry:         24 * time.Hour,
		DashboardCacheTTL: time.Minute,
		MQTTClientID:      "fleet-maintenance-api",
		MQTTTopic:         "fleet/notifications",
		LogLevel:          "info",
		LogFormat:         "text",
		RateLimitRPS:      10,
		RateLimitBurst:    20,
		Windows:           maintenance.DefaultWindows(),
		ActivityLimit:     5,
	}
}

// Load builds the configuration from defaults, a .env file if present, the
// YAML file named by CONFIG_FILE, and finally environment variables.
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.MongoURI = getEnv("MONGO_URI", cfg.MongoURI)
	cfg.MongoDB = getEnv("MONGO_DB", cfg.MongoDB)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTExpiry = getEnvAsDuration("JWT_EXPIRY", cfg.JWTExpiry)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.DashboardCacheTTL = getEnvAsDuration("DASHBOARD_CACHE_TTL", cfg.DashboardCacheTTL)
	cfg.MQTTBroker = getEnv("MQTT_BROKER", cfg.MQTTBroker)
	cfg.MQTTClientID = getEnv("MQTT_CLIENT_ID", cfg.MQTTClientID)
	cfg.MQTTTopic = getEnv("MQTT_TOPIC", cfg.MQTTTopic)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.RateLimitRPS = getEnvAsFloat("RATE_LIMIT_RPS", cfg.RateLimitRPS)
	cfg.RateLimitBurst = getEnvAsInt("RATE_LIMIT_BURST", cfg.RateLimitBurst)
	cfg.Windows.ServiceDays = getEnvAsInt("SERVICE_WINDOW_DAYS", cfg.Windows.ServiceDays)
	cfg.Windows.VerificationDays = getEnvAsInt("VERIFICATION_WINDOW_DAYS", cfg.Windows.VerificationDays)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Windows.ServiceDays <= 0 || c.Windows.VerificationDays <= 0 {
		return fmt.Errorf("due windows must be positive, got %d/%d days", c.Windows.ServiceDays, c.Windows.VerificationDays)
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if c.ActivityLimit <= 0 {
		return fmt.Errorf("activity limit must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
