package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"

	"github.com/joshua-takyi/spk/internal/campus"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	EventsAPIURL       string
	EventsImageBaseURL string
	EventsTimezone     *time.Location
	EventsPageSize     int
	EventsTake         int

	UpstreamTimeout       time.Duration
	UpstreamRatePerSecond float64

	OrgMappingPath string
	OrgRefreshSpec string

	// Optional backends; empty means the in-memory fallback is used.
	SupabaseURL     string
	SupabaseAnonKey string
	MongoDBURI      string
	MongoDBPassword string
	RedisURL        string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:                getEnvWithDefault("PORT", "8080"),
		Environment:         getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:            getEnvWithDefault("LOG_LEVEL", "info"),
		EventsAPIURL:        getEnvWithDefault("EVENTS_API_URL", campus.DefaultBaseURL),
		EventsImageBaseURL:  getEnvWithDefault("EVENTS_IMAGE_BASE_URL", "https://se-images.campuslabs.com/clink/images"),
		OrgMappingPath:      os.Getenv("ORG_MAPPING_PATH"),
		OrgRefreshSpec:      getEnvWithDefault("ORG_REFRESH_SPEC", "@every 6h"),
		SupabaseURL:         os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey:     os.Getenv("SUPABASE_URL_ANON_KEY"),
		MongoDBURI:          os.Getenv("MONGODB_URI"),
		MongoDBPassword:     os.Getenv("MONGODB_PASSWORD"),
		RedisURL:            os.Getenv("REDIS_URL"),
		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		CORSOrigins:         splitList(getEnvWithDefault("CORS_ORIGINS", "http://localhost:3000")),
	}

	var err error
	tz := getEnvWithDefault("EVENTS_TIMEZONE", "America/New_York")
	if cfg.EventsTimezone, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("EVENTS_TIMEZONE %q: %w", tz, err)
	}
	if cfg.EventsPageSize, err = getIntEnv("EVENTS_PAGE_SIZE", 5); err != nil {
		return nil, err
	}
	if cfg.EventsTake, err = getIntEnv("EVENTS_TAKE", 100); err != nil {
		return nil, err
	}
	if cfg.UpstreamTimeout, err = getDurationEnv("UPSTREAM_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.UpstreamRatePerSecond, err = getFloatEnv("UPSTREAM_RATE_PER_SECOND", 5); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = getFloatEnv("RATE_LIMIT_RPS", 10); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getIntEnv("RATE_LIMIT_BURST", 20); err != nil {
		return nil, err
	}

	// Validate required fields
	if cfg.EventsPageSize < 1 {
		return nil, fmt.Errorf("EVENTS_PAGE_SIZE must be at least 1")
	}
	if cfg.EventsTake < 1 {
		return nil, fmt.Errorf("EVENTS_TAKE must be at least 1")
	}
	if (cfg.SupabaseURL == "") != (cfg.SupabaseAnonKey == "") {
		return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_URL_ANON_KEY must be set together")
	}
	if cfg.OrgRefreshSpec != "" {
		if _, err := cron.ParseStandard(cfg.OrgRefreshSpec); err != nil {
			return nil, fmt.Errorf("ORG_REFRESH_SPEC %q: %w", cfg.OrgRefreshSpec, err)
		}
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getFloatEnv(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return f, nil
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) SupabaseEnabled() bool   { return c.SupabaseURL != "" && c.SupabaseAnonKey != "" }
func (c *Config) MongoDBEnabled() bool    { return c.MongoDBURI != "" }
func (c *Config) RedisEnabled() bool      { return c.RedisURL != "" }
func (c *Config) CloudinaryEnabled() bool { return c.CloudinaryCloudName != "" }

// Campus returns the upstream client settings.
func (c *Config) Campus() campus.Config {
	return campus.Config{
		BaseURL:       c.EventsAPIURL,
		Timeout:       c.UpstreamTimeout,
		RatePerSecond: c.UpstreamRatePerSecond,
		Burst:         int(c.UpstreamRatePerSecond) + 1,
		Take:          c.EventsTake,
	}
}
