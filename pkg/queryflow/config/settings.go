package config

import (
	"fmt"
	"os"
	"time"
)

// Environment variables recognized by ApplyEnv.
const (
	EnvDatabase = "QUERYFLOW_DB"
	EnvModel    = "QUERYFLOW_MODEL"
)

// Settings holds every tunable the pipeline and CLI read. Zero values
// are not meaningful defaults; start from Defaults and override.
type Settings struct {
	// DatabasePath is the SQLite warehouse file, or ":memory:".
	DatabasePath string `yaml:"database_path" json:"database_path"`

	// Qualifier prefixes every table reference in generated SQL.
	Qualifier string `yaml:"qualifier" json:"qualifier"`

	// Tables is the full warehouse table set used for the general
	// category and for schema introspection.
	Tables []string `yaml:"tables" json:"tables"`

	// Model names the model the claude CLI should use. Empty means
	// the CLI's own default.
	Model       string  `yaml:"model" json:"model"`
	Temperature float64 `yaml:"temperature" json:"temperature"`

	// MaxRetries bounds SQL regeneration after recoverable execution
	// failures. The first attempt is not a retry.
	MaxRetries int `yaml:"max_retries" json:"max_retries"`

	// MaxRows caps result sets read from the warehouse.
	MaxRows int `yaml:"max_rows" json:"max_rows"`

	// MaxJoins is the static validator's join budget per statement.
	MaxJoins int `yaml:"max_joins" json:"max_joins"`

	QueryTimeout Duration `yaml:"query_timeout" json:"query_timeout"`

	// CacheTTL bounds result-cache entries; SchemaTTL bounds cached
	// schema contexts. Non-positive disables expiry.
	CacheTTL  Duration `yaml:"cache_ttl" json:"cache_ttl"`
	SchemaTTL Duration `yaml:"schema_ttl" json:"schema_ttl"`

	ChartWidth  int `yaml:"chart_width" json:"chart_width"`
	ChartHeight int `yaml:"chart_height" json:"chart_height"`

	// HistoryPath is the SQLite run-history file. Empty keeps history
	// in memory only.
	HistoryPath string `yaml:"history_path" json:"history_path"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// Defaults returns the settings the demo warehouse ships with.
func Defaults() Settings {
	return Settings{
		DatabasePath: "queryflow.db",
		Qualifier:    "main",
		Tables:       []string{"orders", "order_items", "products", "users"},
		Model:        "",
		Temperature:  0.1,
		MaxRetries:   3,
		MaxRows:      10000,
		MaxJoins:     4,
		QueryTimeout: Duration(300 * time.Second),
		CacheTTL:     Duration(time.Hour),
		SchemaTTL:    Duration(time.Hour),
		ChartWidth:   700,
		ChartHeight:  400,
		HistoryPath:  "",
		LogLevel:     "info",
	}
}

// ApplyEnv overrides the warehouse path and model name from the
// environment. Unset or empty variables leave the settings untouched.
func (s *Settings) ApplyEnv() {
	if v := os.Getenv(EnvDatabase); v != "" {
		s.DatabasePath = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		s.Model = v
	}
}

// Validate reports the first invalid setting.
func (s Settings) Validate() error {
	if s.DatabasePath == "" {
		return fmt.Errorf("database_path must not be empty")
	}
	if s.Qualifier == "" {
		return fmt.Errorf("qualifier must not be empty")
	}
	if len(s.Tables) == 0 {
		return fmt.Errorf("tables must not be empty")
	}
	if s.Temperature < 0 || s.Temperature > 2 {
		return fmt.Errorf("temperature must be in [0, 2], got %v", s.Temperature)
	}
	if s.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0, got %d", s.MaxRetries)
	}
	if s.MaxRows < 1 {
		return fmt.Errorf("max_rows must be >= 1, got %d", s.MaxRows)
	}
	if s.MaxJoins < 1 {
		return fmt.Errorf("max_joins must be >= 1, got %d", s.MaxJoins)
	}
	if s.QueryTimeout <= 0 {
		return fmt.Errorf("query_timeout must be positive, got %s", s.QueryTimeout)
	}
	if s.ChartWidth < 1 || s.ChartHeight < 1 {
		return fmt.Errorf("chart dimensions must be positive, got %dx%d", s.ChartWidth, s.ChartHeight)
	}
	switch s.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error; got %q", s.LogLevel)
	}
	return nil
}
