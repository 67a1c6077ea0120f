// Package config loads bistro.yaml, layers .env and environment overrides on top, and fills
// defaults for anything left unset.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Environment variables that override the file.
const (
	EnvConfigPath  = "BISTRO_CONFIG"
	EnvDatabaseURL = "DATABASE_URL"
	EnvStorage     = "BISTRO_STORAGE"
	EnvPort        = "BISTRO_PORT"
	EnvAMQPURL     = "AMQP_URL"
	EnvLogLevel    = "BISTRO_LOG_LEVEL"
)

// Locations searched, in order, when no path is given.
var Locations = []string{"bistro.yaml", "bistro.yml", ".bistro.yaml", ".bistro.yml"}

// Config represents the bistro.yaml configuration structure
type Config struct {
	Server struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		IdleTimeout     time.Duration `yaml:"idle_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Database struct {
		Driver             string        `yaml:"driver"`
		URL                string        `yaml:"url"`
		MaxConnections     int           `yaml:"max_connections"`
		MaxIdleConnections int           `yaml:"max_idle_connections"`
		ConnMaxLifetime    time.Duration `yaml:"conn_max_lifetime"`
		StatementTimeout   time.Duration `yaml:"statement_timeout"`
		AutoMigrate        bool          `yaml:"auto_migrate"`
	} `yaml:"database"`

	Storage struct {
		Backend string `yaml:"backend"`
	} `yaml:"storage"`

	GraphQL struct {
		ResolverTimeout time.Duration `yaml:"resolver_timeout"`
		MaxParallelism  int           `yaml:"max_parallelism"`
		Playground      bool          `yaml:"playground"`
	} `yaml:"graphql"`

	Events struct {
		AMQPURL   string `yaml:"amqp_url"`
		Exchange  string `yaml:"exchange"`
		QueueSize int    `yaml:"queue_size"`
	} `yaml:"events"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := base()
	cfg.applyDefaults()
	return cfg
}

// base holds the defaults that a zero value cannot express.
func base() *Config {
	cfg := &Config{}
	cfg.GraphQL.Playground = true
	return cfg
}

// Load reads path (or the first existing default location), loads .env into the process
// environment without overriding variables already set, applies env overrides and defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if path == "" {
		path = Path()
	}

	cfg := base()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns BISTRO_CONFIG or the first default location that exists.
func Path() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path
	}

	for _, loc := range Locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv(EnvStorage); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv(EnvAMQPURL); v != "" {
		c.Events.AMQPURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		c.Server.Port = port
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Database.MaxConnections == 0 {
		c.Database.MaxConnections = 25
	}
	if c.Database.MaxIdleConnections == 0 {
		c.Database.MaxIdleConnections = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 10 * time.Minute
	}
	if c.Database.StatementTimeout == 0 {
		c.Database.StatementTimeout = 30 * time.Second
	}
	if c.Storage.Backend == "" {
		if c.Database.URL != "" {
			c.Storage.Backend = BackendPostgres
		} else {
			c.Storage.Backend = BackendMemory
		}
	}
	if c.GraphQL.ResolverTimeout == 0 {
		c.GraphQL.ResolverTimeout = 10 * time.Second
	}
	if c.GraphQL.MaxParallelism == 0 {
		c.GraphQL.MaxParallelism = 10
	}
	if c.Events.Exchange == "" {
		c.Events.Exchange = "bistro.events"
	}
	if c.Events.QueueSize == 0 {
		c.Events.QueueSize = 256
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// Validate rejects combinations the service cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("storage backend %q requires database.url or %s", BackendPostgres, EnvDatabaseURL)
		}
	default:
		return fmt.Errorf("unknown storage backend %q (want %s or %s)", c.Storage.Backend, BackendPostgres, BackendMemory)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// Save writes cfg as YAML, creating parent directories.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = Locations[0]
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
