package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aquastore/aquastore/pkg/config"
	"github.com/aquastore/aquastore/pkg/store"
	"github.com/aquastore/aquastore/pkg/telemetry"
)

// loadConfig reads the configuration from --config or the default filename.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultFilename
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// openStore loads the configuration and opens the store it describes.
func openStore(ctx context.Context) (*store.Store, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	logCfg := cfg.Logging
	if verbose {
		logCfg.Level = "debug"
	}
	logger, err := telemetry.NewLogger(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	metrics, err := telemetry.NewMetrics(cfg.Metrics)
	if err != nil {
		return nil, nil, fmt.Errorf("create metrics: %w", err)
	}

	st, err := store.Open(ctx, cfg, store.Options{Logger: logger, Metrics: metrics})
	if err != nil {
		return nil, nil, err
	}
	return st, cfg, nil
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
