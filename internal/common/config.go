package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Lookup      LookupConfig    `toml:"lookup"`
	Writeback   WritebackConfig `toml:"writeback"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger      BadgerConfig `toml:"badger"`
	FixturesDir string       `toml:"fixtures_dir"` // Optional TOML fixtures loaded on startup (dev instances)
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
}

// LookupConfig controls the shared narrative/client-group cache.
type LookupConfig struct {
	RefreshInterval time.Duration `toml:"refresh_interval"` // Narrative map staleness window
	LockTimeout     time.Duration `toml:"lock_timeout"`     // Bounded wait on the cache lock
	RateLimit       time.Duration `toml:"rate_limit"`       // Minimum interval between source refresh fetches
}

// WritebackConfig controls the metrics write-back pipeline.
type WritebackConfig struct {
	Enabled     bool   `toml:"enabled"`
	Schedule    string `toml:"schedule"`     // Cron schedule format
	WindowHours int    `toml:"window_hours"` // Aggregation window per run
}

// NewDefaultConfig creates a configuration with default values.
// Only user-facing settings are exposed in metior.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:           "./data/metior",
				ResetOnStartup: false,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout"},
		},
		Lookup: LookupConfig{
			RefreshInterval: 5 * time.Minute,
			LockTimeout:     10 * time.Second,
			RateLimit:       time.Second,
		},
		Writeback: WritebackConfig{
			Enabled:     true,
			Schedule:    "0 * * * *", // hourly
			WindowHours: 48,
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env. Later files override earlier
// files; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("METIOR_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("METIOR_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("METIOR_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if badgerPath := os.Getenv("METIOR_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if fixturesDir := os.Getenv("METIOR_FIXTURES_DIR"); fixturesDir != "" {
		config.Storage.FixturesDir = fixturesDir
	}

	if level := os.Getenv("METIOR_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("METIOR_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}

	if interval := os.Getenv("METIOR_LOOKUP_REFRESH_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			config.Lookup.RefreshInterval = d
		}
	}
	if timeout := os.Getenv("METIOR_LOOKUP_LOCK_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Lookup.LockTimeout = d
		}
	}

	if enabled := os.Getenv("METIOR_WRITEBACK_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Writeback.Enabled = e
		}
	}
	if schedule := os.Getenv("METIOR_WRITEBACK_SCHEDULE"); schedule != "" {
		config.Writeback.Schedule = schedule
	}
	if window := os.Getenv("METIOR_WRITEBACK_WINDOW_HOURS"); window != "" {
		if w, err := strconv.Atoi(window); err == nil && w > 0 {
			config.Writeback.WindowHours = w
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
