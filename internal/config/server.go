package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Flag sources understood by NewServerConfig.
const (
	FlagSourceStatic       = "static"
	FlagSourceRedis        = "redis"
	FlagSourceLaunchDarkly = "launchdarkly"
)

// ServerConfig holds the HTTP server settings
type ServerConfig struct {
	Port     string
	LogLevel string

	FlagSource  string
	FlagKey     string
	FlagDefault bool
	FlagRefresh string
	LDSDKKey    string
	LDUserKey   string
	LDCountry   string

	RedisAddr     string
	RedisPassword string
	FlagPrefix    string

	CacheTTL time.Duration

	// RateLimit requests per client are allowed in every RateWindow.
	RateLimit  int
	RateWindow time.Duration
}

// NewServerConfig loads configuration from environment variables
func NewServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{
		Port:          getEnv("PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		FlagSource:    strings.ToLower(getEnv("FLAG_SOURCE", FlagSourceStatic)),
		FlagKey:       getEnv("FLAG_KEY", "inflation-adjuster"),
		FlagRefresh:   getEnv("FLAG_REFRESH", "@every 30s"),
		LDSDKKey:      getEnv("LAUNCHDARKLY_SDK_KEY", ""),
		LDUserKey:     getEnv("LAUNCHDARKLY_USER_KEY", "default-user"),
		LDCountry:     getEnv("LAUNCHDARKLY_COUNTRY", "United States"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		FlagPrefix:    getEnv("FLAG_PREFIX", "flags:"),
	}

	var err error
	if cfg.FlagDefault, err = strconv.ParseBool(getEnv("FLAG_DEFAULT", "false")); err != nil {
		return nil, fmt.Errorf("FLAG_DEFAULT: %w", err)
	}
	if cfg.CacheTTL, err = time.ParseDuration(getEnv("CACHE_TTL", "10m")); err != nil {
		return nil, fmt.Errorf("CACHE_TTL: %w", err)
	}
	if cfg.RateLimit, err = strconv.Atoi(getEnv("RATE_LIMIT", "60")); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT: %w", err)
	}
	if cfg.RateWindow, err = time.ParseDuration(getEnv("RATE_WINDOW", "1m")); err != nil {
		return nil, fmt.Errorf("RATE_WINDOW: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that can be overridden after loading, e.g. by command line flags.
func (c *ServerConfig) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}

	switch c.FlagSource {
	case FlagSourceStatic:
	case FlagSourceRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when FLAG_SOURCE is %s", FlagSourceRedis)
		}
	case FlagSourceLaunchDarkly:
		if c.LDSDKKey == "" {
			return fmt.Errorf("LAUNCHDARKLY_SDK_KEY is required when FLAG_SOURCE is %s", FlagSourceLaunchDarkly)
		}
	default:
		return fmt.Errorf("FLAG_SOURCE must be one of %s, %s or %s, got %q",
			FlagSourceStatic, FlagSourceRedis, FlagSourceLaunchDarkly, c.FlagSource)
	}

	if c.FlagKey == "" {
		return fmt.Errorf("FLAG_KEY is required")
	}
	if _, err := cron.ParseStandard(c.FlagRefresh); err != nil {
		return fmt.Errorf("FLAG_REFRESH: %w", err)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL cannot be negative")
	}
	if c.RateLimit <= 0 || c.RateWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT and RATE_WINDOW must be positive")
	}
	return nil
}

// Addr returns the listen address for Port.
func (c *ServerConfig) Addr() string {
	return ":" + c.Port
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
