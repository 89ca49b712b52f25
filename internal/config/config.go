package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/claude/rutinify/internal/storage"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type StorageConfig struct {
	Driver         string         `yaml:"driver"`
	Path           string         `yaml:"path"`
	Database       DatabaseConfig `yaml:"database"`
	MigrationsPath string         `yaml:"migrations_path"`
	Redis          RedisConfig    `yaml:"redis"`
	// SeedCSV is imported as the first routine when the store is empty.
	SeedCSV string `yaml:"seed_csv"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns a config that runs a local server on an sqlite file.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Host: "127.0.0.1", Port: 8080},
		Storage: StorageConfig{Driver: storage.DriverSQLite, Path: "data/rutinify.db"},
		Tailscale: TailscaleConfig{
			Hostname: "rutinify",
			StateDir: "data/tsnet",
		},
		Log: LogConfig{Level: "info"},
	}
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Options converts the storage section for storage.Open.
func (s StorageConfig) Options() storage.Options {
	opts := storage.Options{
		Driver:         s.Driver,
		Path:           s.Path,
		MigrationsPath: s.MigrationsPath,
		RedisAddr:      s.Redis.Addr,
		RedisPassword:  s.Redis.Password,
		RedisDB:        s.Redis.DB,
		RedisPrefix:    s.Redis.Prefix,
	}
	if s.Driver == storage.DriverPostgres {
		opts.DSN = s.Database.DSN()
	}
	return opts
}

// SlogLevel maps the configured level name to a slog.Level.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads config from a YAML file on top of the defaults, then applies
// environment variable overrides. Env vars use the prefix RUTINIFY_:
//
//	RUTINIFY_SERVER_HOST, RUTINIFY_SERVER_PORT,
//	RUTINIFY_STORAGE_DRIVER, RUTINIFY_STORAGE_PATH, RUTINIFY_SEED_CSV,
//	RUTINIFY_DB_HOST, RUTINIFY_DB_PORT, RUTINIFY_DB_NAME,
//	RUTINIFY_DB_USER, RUTINIFY_DB_PASSWORD, RUTINIFY_DB_SSLMODE,
//	RUTINIFY_REDIS_ADDR, RUTINIFY_REDIS_PASSWORD, RUTINIFY_REDIS_DB, RUTINIFY_REDIS_PREFIX,
//	RUTINIFY_TAILSCALE_ENABLED, RUTINIFY_TAILSCALE_HOSTNAME,
//	RUTINIFY_LOG_LEVEL
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return finish(cfg)
}

// LoadOrDefault is Load, except that a missing file yields the defaults
// (still subject to env overrides).
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return finish(Default())
	}
	return cfg, err
}

func finish(cfg *Config) (*Config, error) {
	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	str := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) {
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	str("RUTINIFY_SERVER_HOST", &cfg.Server.Host)
	num("RUTINIFY_SERVER_PORT", &cfg.Server.Port)
	str("RUTINIFY_STORAGE_DRIVER", &cfg.Storage.Driver)
	str("RUTINIFY_STORAGE_PATH", &cfg.Storage.Path)
	str("RUTINIFY_SEED_CSV", &cfg.Storage.SeedCSV)
	str("RUTINIFY_DB_HOST", &cfg.Storage.Database.Host)
	num("RUTINIFY_DB_PORT", &cfg.Storage.Database.Port)
	str("RUTINIFY_DB_NAME", &cfg.Storage.Database.Name)
	str("RUTINIFY_DB_USER", &cfg.Storage.Database.User)
	str("RUTINIFY_DB_PASSWORD", &cfg.Storage.Database.Password)
	str("RUTINIFY_DB_SSLMODE", &cfg.Storage.Database.SSLMode)
	str("RUTINIFY_REDIS_ADDR", &cfg.Storage.Redis.Addr)
	str("RUTINIFY_REDIS_PASSWORD", &cfg.Storage.Redis.Password)
	num("RUTINIFY_REDIS_DB", &cfg.Storage.Redis.DB)
	str("RUTINIFY_REDIS_PREFIX", &cfg.Storage.Redis.Prefix)
	if v := os.Getenv("RUTINIFY_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	str("RUTINIFY_TAILSCALE_HOSTNAME", &cfg.Tailscale.Hostname)
	str("RUTINIFY_LOG_LEVEL", &cfg.Log.Level)
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	s := c.Storage
	switch s.Driver {
	case storage.DriverSQLite:
		if s.Path == "" {
			return fmt.Errorf("storage.path is required for sqlite")
		}
	case storage.DriverPostgres:
		if s.Database.Host == "" {
			return fmt.Errorf("storage.database.host is required")
		}
		if s.Database.Port == 0 {
			return fmt.Errorf("storage.database.port is required")
		}
		if s.Database.Name == "" {
			return fmt.Errorf("storage.database.name is required")
		}
		if s.Database.User == "" {
			return fmt.Errorf("storage.database.user is required")
		}
	case storage.DriverRedis:
		if s.Redis.Addr == "" {
			return fmt.Errorf("storage.redis.addr is required")
		}
	case storage.DriverMemory:
	default:
		return fmt.Errorf("storage.driver %q is not one of sqlite, postgres, redis, memory", s.Driver)
	}

	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}
