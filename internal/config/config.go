package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration decodes YAML durations written either as strings ("30s", "720h")
// or as raw nanosecond integers.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		dur, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", s, err)
		}
		*d = Duration(dur)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("parse duration: %w", err)
	}
	*d = Duration(n)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full application configuration. Every field has a usable
// default so the CLI runs with no file at all (offline fixture mode).
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Weights  WeightsConfig  `yaml:"weights"`
	Fixtures string         `yaml:"fixtures"` // fixture file for offline mode
	Batch    BatchConfig    `yaml:"batch"`
	Log      LogConfig      `yaml:"log"`
}

type DatabaseConfig struct {
	DSN          string   `yaml:"dsn"`
	MaxOpenConns int      `yaml:"max_open_conns"`
	MaxIdleConns int      `yaml:"max_idle_conns"`
	QueryTimeout Duration `yaml:"query_timeout"`
}

type CacheConfig struct {
	RedisAddr string   `yaml:"redis_addr"`
	SimTTL    Duration `yaml:"sim_ttl"`
}

type WeightsConfig struct {
	// File holds versioned weight sets for file-backed mode. Ignored when
	// the database is configured; versions then live in postgres.
	File string `yaml:"file"`
}

type BatchConfig struct {
	Workers int `yaml:"workers"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Load reads the YAML file at path (optional), applies environment variable
// overrides, and fills defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("YIELDSCORE_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("YIELDSCORE_WEIGHTS_FILE"); v != "" {
		cfg.Weights.File = v
	}
	if v := os.Getenv("YIELDSCORE_FIXTURES"); v != "" {
		cfg.Fixtures = v
	}
	if v := os.Getenv("YIELDSCORE_BATCH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Batch.Workers = n
		}
	}
	if v := os.Getenv("YIELDSCORE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.QueryTimeout == 0 {
		cfg.Database.QueryTimeout = Duration(30 * time.Second)
	}
	if cfg.Cache.SimTTL == 0 {
		cfg.Cache.SimTTL = Duration(30 * 24 * time.Hour)
	}
	if cfg.Batch.Workers == 0 {
		cfg.Batch.Workers = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
