package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultConfigPath is read when no explicit config path is given.
// A missing default file is not an error; environment variables alone suffice.
const DefaultConfigPath = "config.yaml"

// Supported database drivers.
const (
	DriverSQLite    = "sqlite"
	DriverPostgres  = "postgres"
	DriverSQLServer = "sqlserver"
	DriverNone      = "none"
)

// Config holds all configuration for kennel-etl.
// Configuration can come from a YAML file or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, connection URLs) must only come from environment variables.
type Config struct {
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// DataDir holds the raw source files.
	DataDir string `yaml:"data_dir" env:"DATA_DIR" env-default:"data"`
	// OutputDir receives flat-file outputs and, by default, the SQLite database.
	OutputDir string `yaml:"output_dir" env:"OUTPUT_DIR" env-default:"output"`

	Sources SourcesConfig `yaml:"sources"`

	// MaxFailureRate halts a run before anything is written when the share of
	// rejected records exceeds it. 1 never halts.
	MaxFailureRate float64 `yaml:"max_failure_rate" env:"MAX_FAILURE_RATE" env-default:"1"`

	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
}

// SourcesConfig names the raw input files inside DataDir.
type SourcesConfig struct {
	PetActivities string `yaml:"pet_activities" env:"PET_ACTIVITY_FILE" env-default:"pet_activity.json"`
	Environment   string `yaml:"environment" env:"ENVIRONMENT_FILE" env-default:"environment.csv"`
	StaffLogs     string `yaml:"staff_logs" env:"STAFF_LOGS_FILE" env-default:"staff_logs.csv"`
}

// DatabaseConfig holds relational store configuration.
type DatabaseConfig struct {
	// Driver is one of sqlite, postgres, sqlserver or none.
	Driver string `yaml:"driver" env:"DATABASE_DRIVER" env-default:"sqlite"`
	// URL is the full connection string. Secret - not in YAML.
	// Defaults to <output_dir>/kennelos.db for sqlite and is built from the
	// PG* fields for postgres.
	URL            string `yaml:"-" env:"DATABASE_URL"`
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
	MaxConnections int32  `yaml:"max_connections" env:"DB_MAX_CONNECTIONS" env-default:"10"`
	RetryAttempts  int    `yaml:"retry_attempts" env:"DB_RETRY_ATTEMPTS" env-default:"3"`

	// PostgreSQL connection parts, used when URL is empty.
	Host     string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User     string `yaml:"user" env:"PGUSER" env-default:"kennelos"`
	Password string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database string `yaml:"database" env:"PGDATABASE" env-default:"kennelos"`
	SSLMode  string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// ServerConfig holds the read-only HTTP API settings.
type ServerConfig struct {
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8050"`
}

// Addr returns the host:port the server listens on.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.BindAddr, s.Port)
}

// Load reads configuration from path with environment variable overrides.
// An empty path means DefaultConfigPath, which may be absent.
// The version parameter is injected at build time and set on the returned Config.
func Load(version, path string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	case explicit || !errors.Is(statErr, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read %s: %w", path, statErr)
	default:
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres, DriverSQLServer, DriverNone:
	default:
		return fmt.Errorf("database driver %q is not one of sqlite, postgres, sqlserver, none", c.Database.Driver)
	}

	if c.MaxFailureRate < 0 || c.MaxFailureRate > 1 {
		return fmt.Errorf("max_failure_rate must be within [0, 1], got %v", c.MaxFailureRate)
	}

	if c.Database.Driver == DriverSQLServer && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required for the sqlserver driver")
	}

	return nil
}

// applyDefaults fills derived fields after loading.
func (c *Config) applyDefaults() {
	if c.Database.URL != "" {
		return
	}
	switch c.Database.Driver {
	case DriverSQLite:
		c.Database.URL = filepath.Join(c.OutputDir, "kennelos.db")
	case DriverPostgres:
		c.Database.URL = c.Database.ConnectionString()
	}
}

// Enabled reports whether a relational store is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.Driver != DriverNone
}

// ConnectionString returns a PostgreSQL URL built from the PG* fields.
func (c *DatabaseConfig) ConnectionString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(resolveHostForDocker(c.Host), fmt.Sprint(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

var (
	isDockerOnce   sync.Once
	isDockerResult bool
)

// resolveHostForDocker maps a loopback database host to host.docker.internal
// when running inside a container, so a pipeline container can reach a
// database on the host machine.
func resolveHostForDocker(host string) string {
	isDockerOnce.Do(func() {
		_, err := os.Stat("/.dockerenv")
		isDockerResult = err == nil
	})
	if isDockerResult && (host == "localhost" || host == "127.0.0.1") {
		return "host.docker.internal"
	}
	return host
}
