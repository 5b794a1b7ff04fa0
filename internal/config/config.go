package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// ErrUnknownBackend is returned by Validate for an unsupported store backend.
var ErrUnknownBackend = errors.New("unknown store backend")

// Config holds the settings of the demo request service.
type Config struct {
	// AppRoot is the directory DataDir is resolved against.
	AppRoot string `yaml:"app_root"`

	// DataDir holds the backing files, relative to AppRoot unless absolute.
	DataDir string `yaml:"data_dir"`

	// RequestsFile is the JSON file name used by the json backend.
	RequestsFile string `yaml:"requests_file"`

	// Backend selects the store: json, sqlite or memory.
	Backend string `yaml:"backend"`

	// SQLiteFile is the database file name used by the sqlite backend.
	SQLiteFile string `yaml:"sqlite_file"`

	// LogLevel is a zerolog level name.
	LogLevel string `yaml:"log_level"`

	// AllowedStatuses restricts status updates. Empty allows any status.
	AllowedStatuses []string `yaml:"allowed_statuses"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		AppRoot:      ".",
		DataDir:      filepath.Join("backend", "data"),
		RequestsFile: "demo_requests.json",
		Backend:      BackendJSON,
		SQLiteFile:   "demo_requests.db",
		LogLevel:     zerolog.InfoLevel.String(),
	}
}

// Load builds the configuration from defaults, the optional YAML file named by
// DEMO_CONFIG_FILE, and DEMO_* environment variables, in that order.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("DEMO_CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.AppRoot = getEnvWithDefault("DEMO_APP_ROOT", cfg.AppRoot)
	cfg.DataDir = getEnvWithDefault("DEMO_DATA_DIR", cfg.DataDir)
	cfg.RequestsFile = getEnvWithDefault("DEMO_REQUESTS_FILE", cfg.RequestsFile)
	cfg.Backend = strings.ToLower(getEnvWithDefault("DEMO_STORE_BACKEND", cfg.Backend))
	cfg.SQLiteFile = getEnvWithDefault("DEMO_SQLITE_FILE", cfg.SQLiteFile)
	cfg.LogLevel = getEnvWithDefault("DEMO_LOG_LEVEL", cfg.LogLevel)
	if statuses, found := os.LookupEnv("DEMO_ALLOWED_STATUSES"); found {
		cfg.AllowedStatuses = splitList(statuses)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks the backend and log level.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendJSON, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return nil
}

// DataPath is the resolved data directory.
func (c *Config) DataPath() string {
	if filepath.IsAbs(c.DataDir) {
		return c.DataDir
	}
	return filepath.Join(c.AppRoot, c.DataDir)
}

func (c *Config) RequestsPath() string {
	return filepath.Join(c.DataPath(), c.RequestsFile)
}

func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataPath(), c.SQLiteFile)
}

func getEnvWithDefault(name string, def string) string {
	res, found := os.LookupEnv(name)
	if !found {
		return def
	}
	return res
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
