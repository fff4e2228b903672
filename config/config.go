// Package config loads server configuration from defaults, a TOML file,
// environment variables and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
	todo "github.com/sicko7947/todo-go"
)

// DefaultConfigFile is loaded from the working directory when no path is given
const DefaultConfigFile = "todo.toml"

// Config holds everything needed to start the server
type Config struct {
	Addr            string         `toml:"addr"`
	Backend         string         `toml:"backend"`
	DSN             string         `toml:"dsn"`
	Table           string         `toml:"table"`
	LogLevel        string         `toml:"log_level"`
	LogFormat       string         `toml:"log_format"`
	ShutdownTimeout Duration       `toml:"shutdown_timeout"`
	CORSOrigins     []string       `toml:"cors_origins"`
	Pool            PoolConfig     `toml:"pool"`
	DynamoDB        DynamoDBConfig `toml:"dynamodb"`
}

// PoolConfig holds connection pool limits for relational backends
type PoolConfig struct {
	MaxOpenConns    int      `toml:"max_open_conns"`
	MaxIdleConns    int      `toml:"max_idle_conns"`
	ConnMaxLifetime Duration `toml:"conn_max_lifetime"`
}

// DynamoDBConfig holds settings for the dynamodb backend
type DynamoDBConfig struct {
	Table    string `toml:"table"`
	Region   string `toml:"region"`
	Endpoint string `toml:"endpoint"`
}

// Duration is a time.Duration written as a string such as "5s" in TOML
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Addr:            "127.0.0.1:8081",
		Backend:         string(todo.BackendSQLite),
		DSN:             "./todo.db",
		Table:           todo.DefaultTableName,
		LogLevel:        "info",
		LogFormat:       "console",
		ShutdownTimeout: Duration{5 * time.Second},
		CORSOrigins:     []string{"*"},
		Pool: PoolConfig{
			MaxOpenConns:    todo.DefaultPoolConfig.MaxOpenConns,
			MaxIdleConns:    todo.DefaultPoolConfig.MaxIdleConns,
			ConnMaxLifetime: Duration{todo.DefaultPoolConfig.ConnMaxLifetime},
		},
		DynamoDB: DynamoDBConfig{
			Table: todo.DefaultTableName,
		},
	}
}

// Load builds the configuration from all sources in priority order:
// 1. Defaults
// 2. Config file (-config flag, TODO_CONFIG, or ./todo.toml if it exists)
// 3. Environment variables
// 4. CLI flags that were set explicitly
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := Default()

	flags := registerFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	path, required := configPath(*flags.configFile)
	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			if required || !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("loading config file %s: %w", path, err)
			}
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	applyFlags(cfg, fs, flags)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// configPath returns the file to load and whether it must exist
func configPath(flagValue string) (string, bool) {
	if flagValue != "" {
		return flagValue, true
	}
	if v := os.Getenv("TODO_CONFIG"); v != "" {
		return v, true
	}
	return DefaultConfigFile, false
}

func loadFile(cfg *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}

	return nil
}

// Validate checks values that cannot be checked by the decoder
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}

	backend, err := todo.ParseBackend(c.Backend)
	if err != nil {
		return err
	}
	if backend.IsRelational() && c.DSN == "" {
		return fmt.Errorf("backend %s requires a dsn", backend)
	}
	if backend == todo.BackendDynamoDB && c.DynamoDB.Table == "" {
		return fmt.Errorf("backend dynamodb requires dynamodb.table")
	}

	if level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil || level == zerolog.NoLevel {
		return fmt.Errorf("unknown log_level %q (want debug, info, warn or error)", c.LogLevel)
	}

	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log_format %q (want console or json)", c.LogFormat)
	}

	if c.ShutdownTimeout.Duration < 0 {
		return fmt.Errorf("shutdown_timeout must not be negative")
	}

	return nil
}

// BackendKind returns the parsed backend. Call after Validate.
func (c *Config) BackendKind() todo.Backend {
	b, _ := todo.ParseBackend(c.Backend)
	return b
}

// PoolLimits converts the pool section for the store package
func (c *Config) PoolLimits() todo.PoolConfig {
	return todo.PoolConfig{
		MaxOpenConns:    c.Pool.MaxOpenConns,
		MaxIdleConns:    c.Pool.MaxIdleConns,
		ConnMaxLifetime: c.Pool.ConnMaxLifetime.Duration,
	}
}
