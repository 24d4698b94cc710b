package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	Redis       RedisConfig       `toml:"redis"`
	Logs        LogsConfig        `toml:"logs"`
	Metrics     MetricsConfig     `toml:"metrics"`
	ActivityLog ActivityLogConfig `toml:"activity_log"`
	Sweeper     SweeperConfig     `toml:"sweeper"`
	Slots       SlotsConfig       `toml:"slots"`
	RateLimit   RateLimitConfig   `toml:"rate_limit"`
}

// ServerConfig timeouts are in seconds.
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
	AutoMigrate     bool   `toml:"auto_migrate"` // apply embedded migrations on startup
}

// DSN returns a lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// URL returns the postgres:// form used by migrations.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

// RedisConfig backs the per-facility regeneration lock. Disabled means an in-process lock.
type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	LockTTL  int    `toml:"lock_ttl"` // seconds
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type ActivityLogConfig struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // seconds
}

type SweeperConfig struct {
	Enabled       bool   `toml:"enabled"`
	Timezone      string `toml:"timezone"`
	DailyHour     int    `toml:"daily_hour"`
	DailyMinute   int    `toml:"daily_minute"`
	CheckInterval int    `toml:"check_interval"` // seconds
}

// Location resolves Timezone, falling back to UTC.
func (s SweeperConfig) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type SlotsConfig struct {
	MaxGenerationDays  int `toml:"max_generation_days"`
	AutoRegenerateDays int `toml:"auto_regenerate_days"` // 0 disables regeneration on schedule edits
}

type RateLimitConfig struct {
	Enabled bool    `toml:"enabled"`
	RPS     float64 `toml:"rps"`
	Burst   int     `toml:"burst"`
}

// Load reads an optional .env next to the working directory, expands ${VAR}
// placeholders in the TOML file and applies defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	return Parse(os.ExpandEnv(string(raw)))
}

// Parse decodes TOML text without touching the environment.
func Parse(data string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 300
	}
	if c.Redis.LockTTL == 0 {
		c.Redis.LockTTL = 60
	}
	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "pool-schedule-service"
	}
	if c.ActivityLog.Timeout == 0 {
		c.ActivityLog.Timeout = 5
	}
	if c.Sweeper.DailyHour == 0 && c.Sweeper.DailyMinute == 0 {
		c.Sweeper.DailyHour = 1
	}
	if c.Sweeper.CheckInterval == 0 {
		c.Sweeper.CheckInterval = 60
	}
	if c.Slots.MaxGenerationDays == 0 {
		c.Slots.MaxGenerationDays = 366
	}
	if c.RateLimit.RPS == 0 {
		c.RateLimit.RPS = 5
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 10
	}
}

func (c *Config) Validate() error {
	if c.Server.HTTPPort < 1 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port=%d", ErrInvalidConfig, c.Server.HTTPPort)
	}
	if c.Sweeper.DailyHour < 0 || c.Sweeper.DailyHour > 23 {
		return fmt.Errorf("%w: sweeper.daily_hour=%d", ErrInvalidConfig, c.Sweeper.DailyHour)
	}
	if c.Sweeper.DailyMinute < 0 || c.Sweeper.DailyMinute > 59 {
		return fmt.Errorf("%w: sweeper.daily_minute=%d", ErrInvalidConfig, c.Sweeper.DailyMinute)
	}
	if c.Slots.MaxGenerationDays < 1 {
		return fmt.Errorf("%w: slots.max_generation_days=%d", ErrInvalidConfig, c.Slots.MaxGenerationDays)
	}
	if c.Slots.AutoRegenerateDays < 0 || c.Slots.AutoRegenerateDays > c.Slots.MaxGenerationDays {
		return fmt.Errorf("%w: slots.auto_regenerate_days=%d", ErrInvalidConfig, c.Slots.AutoRegenerateDays)
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("%w: redis.addr is required when redis is enabled", ErrInvalidConfig)
	}
	if c.ActivityLog.Enabled && c.ActivityLog.URL == "" {
		return fmt.Errorf("%w: activity_log.url is required when activity log is enabled", ErrInvalidConfig)
	}
	return nil
}
