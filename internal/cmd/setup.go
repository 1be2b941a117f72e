package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/randalmurphal/queryflow/pkg/queryflow"
	"github.com/randalmurphal/queryflow/pkg/queryflow/backend"
	"github.com/randalmurphal/queryflow/pkg/queryflow/config"
	"github.com/randalmurphal/queryflow/pkg/queryflow/history"
	"github.com/randalmurphal/queryflow/pkg/queryflow/llm"
)

// loadSettings resolves the effective settings: the --config file when
// given, otherwise defaults plus environment, then flag overrides on
// top of either.
func loadSettings() (config.Settings, error) {
	var (
		settings config.Settings
		err      error
	)
	if cfgFile != "" {
		settings, err = config.FromFile(cfgFile)
	} else {
		settings = config.Defaults()
		settings.ApplyEnv()
		err = settings.Validate()
	}
	if err != nil {
		return config.Settings{}, err
	}
	if dbOverride != "" {
		settings.DatabasePath = dbOverride
	}
	return settings, nil
}

// newLogger builds the CLI logger. Logs go to stderr so command output
// stays pipeable.
func newLogger(settings config.Settings) *slog.Logger {
	level := slog.LevelInfo
	switch settings.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openWarehouse opens the SQLite warehouse named by the settings.
func openWarehouse(settings config.Settings) (*backend.SQLite, error) {
	be, err := backend.OpenSQLite(settings.DatabasePath, backend.WithMaxRows(settings.MaxRows))
	if err != nil {
		return nil, fmt.Errorf("open warehouse %s: %w", settings.DatabasePath, err)
	}
	return be, nil
}

// openHistory opens the run-history store. An empty history path keeps
// records in memory for the life of the process.
func openHistory(settings config.Settings) (history.Store, error) {
	if settings.HistoryPath == "" {
		return history.NewMemoryStore(), nil
	}
	store, err := history.NewSQLiteStore(settings.HistoryPath)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", settings.HistoryPath, err)
	}
	return store, nil
}

// buildEngine wires a full engine from the settings. The returned
// cleanup closes the engine together with the warehouse and history
// store it was built on.
func buildEngine(settings config.Settings) (*queryflow.Engine, func(), error) {
	be, err := openWarehouse(settings)
	if err != nil {
		return nil, nil, err
	}
	store, err := openHistory(settings)
	if err != nil {
		_ = be.Close()
		return nil, nil, err
	}

	var clientOpts []llm.ClaudeOption
	if settings.Model != "" {
		clientOpts = append(clientOpts, llm.WithModel(settings.Model))
	}
	clientOpts = append(clientOpts, llm.WithTimeout(settings.QueryTimeout.Std()))
	client := llm.NewClaudeCLI(clientOpts...)

	eng, err := queryflow.New(client, be,
		queryflow.WithLogger(newLogger(settings)),
		queryflow.WithQualifier(settings.Qualifier),
		queryflow.WithTables(settings.Tables...),
		queryflow.WithMaxRetries(settings.MaxRetries),
		queryflow.WithMaxJoins(settings.MaxJoins),
		queryflow.WithQueryTimeout(settings.QueryTimeout.Std()),
		queryflow.WithTemperature(settings.Temperature),
		queryflow.WithCacheTTL(settings.CacheTTL.Std()),
		queryflow.WithSchemaTTL(settings.SchemaTTL.Std()),
		queryflow.WithHistory(store),
	)
	if err != nil {
		_ = store.Close()
		_ = be.Close()
		return nil, nil, err
	}

	cleanup := func() {
		eng.Close()
		_ = store.Close()
		_ = be.Close()
	}
	return eng, cleanup, nil
}
