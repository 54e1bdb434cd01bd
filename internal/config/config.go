package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// CacheConfig holds response cache configuration.
type CacheConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	TTL           time.Duration `mapstructure:"-"`
	Backend       string        `mapstructure:"backend"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// RedisConfig holds Redis configuration for the redis cache backend.
type RedisConfig struct {
	Address   string `mapstructure:"address"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// ProviderConfig holds upstream data provider configuration.
type ProviderConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	RateBurst      int           `mapstructure:"rate_burst"`
	MaxConcurrency int           `mapstructure:"max_concurrency"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// BreakerConfig holds circuit breaker settings for upstream calls.
type BreakerConfig struct {
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
	Interval         time.Duration `mapstructure:"interval"`
	OpenTimeout      time.Duration `mapstructure:"open_timeout"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MCPConfig holds MCP server configuration.
type MCPConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Config holds all configuration for the finance gateway.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Provider ProviderConfig `mapstructure:"provider"`
	Breaker  BreakerConfig  `mapstructure:"breaker"`
	Log      LogConfig      `mapstructure:"log"`
	MCP      MCPConfig      `mapstructure:"mcp"`
}

// Load reads configuration from an optional config file and environment variables.
// Environment variables take precedence over config file values.
//
// Recognised environment variables:
//   - CACHE_ENABLED, CACHE_TTL (seconds or Go duration), CACHE_BACKEND
//   - REDIS_ADDRESS, REDIS_PASSWORD, REDIS_DB
//   - PROVIDER_BASE_URL, PROVIDER_TIMEOUT, PROVIDER_MAX_CONCURRENCY
//   - SERVER_ADDRESS, LOG_LEVEL, LOG_FORMAT, MCP_ENABLED
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Optionally read from config file if it exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.financegateway")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// server.address -> SERVER_ADDRESS
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// cache.ttl accepts bare seconds, which the duration decode hook would reject.
	ttl, err := ParseTTL(v.GetString("cache.ttl"))
	if err != nil {
		return nil, err
	}
	config.Cache.TTL = ttl

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "300")
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.sweep_interval", time.Minute)

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "fg:")

	v.SetDefault("provider.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("provider.timeout", 10*time.Second)
	v.SetDefault("provider.rate_limit", 10.0)
	v.SetDefault("provider.rate_burst", 5)
	v.SetDefault("provider.max_concurrency", 0)
	v.SetDefault("provider.user_agent", "Mozilla/5.0 (compatible; financegateway/1.0)")

	v.SetDefault("breaker.failure_threshold", 5)
	v.SetDefault("breaker.interval", time.Minute)
	v.SetDefault("breaker.open_timeout", 30*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("mcp.enabled", true)
	v.SetDefault("mcp.path", "/mcp")
}

// ParseTTL parses a cache TTL given either as whole seconds ("300") or as a Go duration ("5m").
func ParseTTL(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if d, err := time.ParseDuration(raw); err == nil {
		return d, nil
	}
	secs, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid cache ttl %q: want seconds or a duration", raw)
	}
	return time.Duration(secs) * time.Second, nil
}

// Validate checks that the loaded configuration is usable.
func (c *Config) Validate() error {
	var errs []error

	if c.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL))
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("cache.backend must be memory or redis, got %q", c.Cache.Backend))
	}
	if c.Cache.Backend == "redis" && c.Redis.Address == "" {
		errs = append(errs, errors.New("redis.address is required for the redis cache backend"))
	}
	if c.Provider.BaseURL == "" {
		errs = append(errs, errors.New("provider.base_url is required"))
	}
	if c.Provider.MaxConcurrency < 0 {
		errs = append(errs, fmt.Errorf("provider.max_concurrency must be >= 0, got %d", c.Provider.MaxConcurrency))
	}
	if c.Provider.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("provider.rate_limit must be >= 0, got %v", c.Provider.RateLimit))
	}

	return errors.Join(errs...)
}
