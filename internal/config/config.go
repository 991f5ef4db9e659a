package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultHistoryMaxEntries = 100
	maxHistoryMaxEntries     = 1000
)

type ProjectConfig struct {
	Project  string         `yaml:"project"`
	Version  int            `yaml:"version"`
	Database DatabaseConfig `yaml:"database"`
	History  HistoryConfig  `yaml:"history"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Advice   string         `yaml:"advice"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type HistoryConfig struct {
	MaxEntries int `yaml:"max_entries"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// LoadProjectConfig reads the YAML config at path. A .env file next to it is
// loaded first, and ${VAR} placeholders in the YAML are expanded from the
// environment.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	if err := loadEnvFile(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	expandEnvVars(&cfg)

	applyDefaults(&cfg)

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	if cfg.Advice != "" && !filepath.IsAbs(cfg.Advice) {
		cfg.Advice = filepath.Join(filepath.Dir(path), cfg.Advice)
	}

	return &cfg, nil
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} in string fields. Bare $NAME is left alone.
func expandEnvVars(cfg *ProjectConfig) {
	for _, field := range []*string{
		&cfg.Project,
		&cfg.Database.DSN,
		&cfg.Log.Level,
		&cfg.Log.Format,
		&cfg.Metrics.Addr,
		&cfg.Advice,
	} {
		*field = expandPlaceholders(*field)
	}
}

func expandPlaceholders(value string) string {
	if !strings.Contains(value, "${") {
		return value
	}
	return placeholderPattern.ReplaceAllStringFunc(value, func(match string) string {
		return os.Getenv(placeholderPattern.FindStringSubmatch(match)[1])
	})
}

func applyDefaults(cfg *ProjectConfig) {
	if cfg.History.MaxEntries == 0 {
		cfg.History.MaxEntries = DefaultHistoryMaxEntries
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}

	dsn := strings.TrimSpace(cfg.Database.DSN)
	if dsn == "" {
		return fmt.Errorf("database dsn is required")
	}
	if _, err := Backend(dsn); err != nil {
		return err
	}

	if cfg.History.MaxEntries < 1 || cfg.History.MaxEntries > maxHistoryMaxEntries {
		return fmt.Errorf("history max_entries must be between 1 and %d, got %d", maxHistoryMaxEntries, cfg.History.MaxEntries)
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level: %s", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unsupported log format: %s", cfg.Log.Format)
	}

	return nil
}

// Backend reports which store a DSN selects: sqlite, postgres or redis.
func Backend(dsn string) (string, error) {
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite", nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", nil
	case strings.HasPrefix(dsn, "redis://"), strings.HasPrefix(dsn, "rediss://"):
		return "redis", nil
	}
	return "", fmt.Errorf("unsupported database dsn scheme: %s", dsn)
}
