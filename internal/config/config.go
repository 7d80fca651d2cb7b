// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"demo-service/internal/domain"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port              int           `yaml:"port"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"` // 0 = wait for in-flight requests indefinitely
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
}

// DatabaseConfig is the PoolConfig. A pool is only built when Host is set.
type DatabaseConfig struct {
	Host             string        `yaml:"host"`
	User             string        `yaml:"user"`
	Password         string        `yaml:"password"`
	Name             string        `yaml:"name"`
	Port             int           `yaml:"port"`
	SSL              bool          `yaml:"ssl"` // TLS without peer verification
	MaxConns         int32         `yaml:"max_conns"`
	ConnectTimeout   time.Duration `yaml:"connect_timeout"`
	StatementTimeout time.Duration `yaml:"statement_timeout"`
}

func (d DatabaseConfig) Configured() bool { return strings.TrimSpace(d.Host) != "" }

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

func (r RedisConfig) Configured() bool { return strings.TrimSpace(r.Addr) != "" }

type MetricsConfig struct {
	Interval time.Duration `yaml:"interval"` // default-sample refresh interval
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type BuildConfig struct {
	Version string `yaml:"version"`
	Commit  string `yaml:"commit"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
	Build    BuildConfig    `yaml:"build"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the optional YAML file at path, applies environment overrides
// (environment always wins), fills defaults and validates. An empty path skips the file.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	setStr := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setStr("DB_HOST", &cfg.Database.Host)
	setStr("DB_USER", &cfg.Database.User)
	setStr("DB_PASS", &cfg.Database.Password)
	setStr("DB_NAME", &cfg.Database.Name)
	setStr("REDIS_ADDR", &cfg.Redis.Addr)
	setStr("REDIS_PASSWORD", &cfg.Redis.Password)
	setStr("LOG_LEVEL", &cfg.Log.Level)
	setStr("LOG_FORMAT", &cfg.Log.Format)
	setStr("APP_VERSION", &cfg.Build.Version)
	setStr("APP_COMMIT", &cfg.Build.Commit)

	if v, ok := os.LookupEnv("DB_SSL"); ok {
		cfg.Database.SSL = v == "true"
	}

	// The DB_* numeric settings are ignored while no database host is set.
	db := cfg.Database.Configured()

	ints := []struct {
		key  string
		dst  *int
		skip bool
	}{
		{"PORT", &cfg.Server.Port, false},
		{"DB_PORT", &cfg.Database.Port, !db},
		{"REDIS_DB", &cfg.Redis.DB, false},
	}
	for _, e := range ints {
		v := strings.TrimSpace(os.Getenv(e.key))
		if v == "" || e.skip {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", domain.ErrInvalidConfig, e.key, v)
		}
		*e.dst = n
	}

	if v := strings.TrimSpace(os.Getenv("DB_MAX_CONNS")); v != "" && db {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return fmt.Errorf("%w: DB_MAX_CONNS=%q is not an integer", domain.ErrInvalidConfig, v)
		}
		cfg.Database.MaxConns = int32(n)
	}

	durations := []struct {
		key  string
		dst  *time.Duration
		skip bool
	}{
		{"SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout, false},
		{"DB_CONNECT_TIMEOUT", &cfg.Database.ConnectTimeout, !db},
		{"DB_STATEMENT_TIMEOUT", &cfg.Database.StatementTimeout, !db},
		{"METRICS_INTERVAL", &cfg.Metrics.Interval, false},
	}
	for _, e := range durations {
		v := strings.TrimSpace(os.Getenv(e.key))
		if v == "" || e.skip {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a duration", domain.ErrInvalidConfig, e.key, v)
		}
		*e.dst = d
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.ReadHeaderTimeout <= 0 {
		cfg.Server.ReadHeaderTimeout = 10 * time.Second
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Database.ConnectTimeout <= 0 {
		cfg.Database.ConnectTimeout = 5 * time.Second
	}
	if cfg.Database.StatementTimeout <= 0 {
		cfg.Database.StatementTimeout = 5 * time.Second
	}
	if cfg.Metrics.Interval <= 0 {
		cfg.Metrics.Interval = 5 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Build.Version == "" {
		cfg.Build.Version = "dev"
	}
	if cfg.Build.Commit == "" {
		cfg.Build.Commit = "unknown"
	}
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("%w: server port %d out of range", domain.ErrInvalidConfig, cfg.Server.Port)
	}
	if cfg.Database.Configured() && (cfg.Database.Port < 1 || cfg.Database.Port > 65535) {
		return fmt.Errorf("%w: database port %d out of range", domain.ErrInvalidConfig, cfg.Database.Port)
	}
	if cfg.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("%w: shutdown timeout must not be negative", domain.ErrInvalidConfig)
	}
	return nil
}
