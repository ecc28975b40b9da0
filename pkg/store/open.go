package store

import (
	"context"
	"fmt"

	"github.com/aquastore/aquastore/pkg/config"
	"github.com/aquastore/aquastore/pkg/connectors"
)

// Open builds the connector described by a configuration and opens a store
// over it.
func Open(ctx context.Context, cfg *config.Config, opts Options) (*Store, error) {
	conn, err := openConnector(ctx, cfg)
	if err != nil {
		return nil, err
	}
	st, err := New(cfg.Name, conn, opts)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return st, nil
}

// openConnector instantiates the configured backend.
func openConnector(ctx context.Context, cfg *config.Config) (connectors.Connector, error) {
	switch cfg.Connector.Type {
	case "memory":
		return connectors.NewMemory(cfg.Name), nil
	case "file":
		return connectors.NewFile(cfg.Name, connectors.FileConfig{
			Path:     cfg.Connector.Path,
			Compress: cfg.Connector.Compress,
		})
	case "sqlite":
		return connectors.NewSQLite(ctx, cfg.Name, connectors.SQLiteConfig{
			Path: cfg.Connector.Path,
		})
	case "badger":
		return connectors.NewBadger(cfg.Name, connectors.BadgerConfig{
			Path: cfg.Connector.Path,
		})
	default:
		return nil, fmt.Errorf("unknown connector type %q", cfg.Connector.Type)
	}
}
