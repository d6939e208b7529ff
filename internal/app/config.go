package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/klabast/wb-services/canada-holidays/internal/holidays"
	"github.com/klabast/wb-services/canada-holidays/internal/storage"
)

// Constants
const (
	DefaultConfigFile = "canada-holidays.toml"
	EnvPrefix         = "HOLIDAYS_"

	// Error messages
	ErrInvalidDateFormat    = "Invalid date format"
	ErrInvalidYear          = "Invalid year"
	ErrInvalidMonth         = "Invalid month"
	ErrInvalidProvince      = "Invalid province"
	ErrInvalidFormat        = "Invalid format"
	ErrUpstreamUnavailable  = "Holiday data is currently unavailable"
	ErrFailedToGenerateJSON = "Failed to generate JSON"

	// Mode strings
	ModeServe = "serve"
	ModeList  = "list"

	// ICS constants
	ICSProductID   = "-//Canada Holidays//Holiday Calendar//EN"
	ICSTimezone    = "America/Toronto"
	ICSUIDDomain   = "canada-holidays.local"
	ICSPublishTTL  = "PT12H"
	MinYear        = 1900
	MaxYear        = 2100
	DefaultAppName = "canada-holidays"
)

// Global variables (set by main)
var (
	// Holidays resolves the holiday list of a (year, province) pair
	Holidays holidays.Resolver

	// DefaultProvince is used when a request names no province
	DefaultProvince = holidays.DefaultProvince

	// Now is the clock handlers read the current year from
	Now = time.Now
)

// Config is the application configuration
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Upstream  UpstreamConfig  `toml:"upstream"`
	Cache     CacheConfig     `toml:"cache"`
	Logging   LoggingConfig   `toml:"logging"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Auth      AuthConfig      `toml:"auth"`
}

type ServerConfig struct {
	Host            string   `toml:"host"`
	Port            int      `toml:"port"`
	CORSOrigins     []string `toml:"cors_origins"`
	DefaultProvince string   `toml:"default_province"`
	ShutdownTimeout string   `toml:"shutdown_timeout"` // e.g. "10s"
}

type UpstreamConfig struct {
	BaseURL   string `toml:"base_url"`
	Timeout   string `toml:"timeout"`    // "0" disables the timeout
	RateLimit int    `toml:"rate_limit"` // requests per second, 0 = unlimited
}

type CacheConfig struct {
	Backend   string `toml:"backend"`   // memory, file, badger, sqlite
	Path      string `toml:"path"`      // directory or database file
	Retention string `toml:"retention"` // e.g. "24h"
}

type LoggingConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text or json
}

type SchedulerConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // cron expression
	OnStart  bool   `toml:"on_start"`
}

type AuthConfig struct {
	File string `toml:"file"` // username:hash file protecting admin routes
}

// NewDefaultConfig returns the built-in defaults
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "",
			Port:            8080,
			CORSOrigins:     []string{"*"},
			DefaultProvince: holidays.DefaultProvince,
			ShutdownTimeout: "10s",
		},
		Upstream: UpstreamConfig{
			BaseURL:   holidays.DefaultBaseURL,
			Timeout:   holidays.DefaultTimeout.String(),
			RateLimit: holidays.DefaultRateLimit,
		},
		Cache: CacheConfig{
			Backend:   storage.BackendMemory,
			Retention: holidays.DefaultRetention.String(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Scheduler: SchedulerConfig{
			Enabled:  true,
			Schedule: "0 3 * * *",
			OnStart:  false,
		},
		Auth: AuthConfig{
			File: DefaultAuthFile,
		},
	}
}

// LoadConfig loads configuration with priority: defaults -> file -> env.
// Command-line flags are applied by the caller. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnvOverrides applies HOLIDAYS_* environment variables
func applyEnvOverrides(config *Config) {
	if host := os.Getenv(EnvPrefix + "SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv(EnvPrefix + "SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if origins := os.Getenv(EnvPrefix + "CORS_ORIGINS"); origins != "" {
		config.Server.CORSOrigins = splitList(origins)
	}
	if province := os.Getenv(EnvPrefix + "DEFAULT_PROVINCE"); province != "" {
		config.Server.DefaultProvince = strings.ToUpper(province)
	}

	if baseURL := os.Getenv(EnvPrefix + "UPSTREAM_BASE_URL"); baseURL != "" {
		config.Upstream.BaseURL = baseURL
	}
	if timeout := os.Getenv(EnvPrefix + "UPSTREAM_TIMEOUT"); timeout != "" {
		config.Upstream.Timeout = timeout
	}
	if rl := os.Getenv(EnvPrefix + "UPSTREAM_RATE_LIMIT"); rl != "" {
		if r, err := strconv.Atoi(rl); err == nil {
			config.Upstream.RateLimit = r
		}
	}

	if backend := os.Getenv(EnvPrefix + "CACHE_BACKEND"); backend != "" {
		config.Cache.Backend = backend
	}
	if path := os.Getenv(EnvPrefix + "CACHE_PATH"); path != "" {
		config.Cache.Path = path
	}
	if retention := os.Getenv(EnvPrefix + "CACHE_RETENTION"); retention != "" {
		config.Cache.Retention = retention
	}

	if level := os.Getenv(EnvPrefix + "LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	} else if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv(EnvPrefix + "LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}

	if enabled := os.Getenv(EnvPrefix + "SCHEDULER_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			config.Scheduler.Enabled = b
		}
	}
	if schedule := os.Getenv(EnvPrefix + "SCHEDULER_SCHEDULE"); schedule != "" {
		config.Scheduler.Schedule = schedule
	}

	if authFile := os.Getenv(EnvPrefix + "AUTH_FILE"); authFile != "" {
		config.Auth.File = authFile
	} else if authFile := os.Getenv("AUTH_FILE"); authFile != "" {
		config.Auth.File = authFile
	}
}

// Validate checks values that would otherwise fail late
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if !holidays.IsKnownProvince(c.Server.DefaultProvince) {
		return fmt.Errorf("default province %q: %w", c.Server.DefaultProvince, holidays.ErrInvalidProvince)
	}
	if _, err := c.Upstream.TimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.Cache.RetentionDuration(); err != nil {
		return err
	}
	if _, err := c.Server.ShutdownTimeoutDuration(); err != nil {
		return err
	}
	return nil
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ShutdownTimeoutDuration parses the shutdown timeout
func (s ServerConfig) ShutdownTimeoutDuration() (time.Duration, error) {
	return parseDuration("server.shutdown_timeout", s.ShutdownTimeout, 10*time.Second)
}

// TimeoutDuration parses the upstream timeout; zero means none
func (u UpstreamConfig) TimeoutDuration() (time.Duration, error) {
	return parseDuration("upstream.timeout", u.Timeout, holidays.DefaultTimeout)
}

// RetentionDuration parses the cache retention window
func (c CacheConfig) RetentionDuration() (time.Duration, error) {
	return parseDuration("cache.retention", c.Retention, holidays.DefaultRetention)
}

// StorageConfig converts the cache section for storage.Open
func (c CacheConfig) StorageConfig() storage.Config {
	return storage.Config{Backend: c.Backend, Path: c.Path}
}

func parseDuration(name, value string, fallback time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	if value == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", name, value)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
