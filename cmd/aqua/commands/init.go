package commands

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/aquastore/aquastore/pkg/config"
	"github.com/aquastore/aquastore/pkg/store"
)

func newInitCommand() *cobra.Command {
	var (
		name          string
		connectorType string
		path          string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new store",
		Long: `Initialize a new store: write its configuration file and create the
storage backend.`,
		Example: `  # A SQLite-backed store
  aqua init --name heads --type sqlite --path heads.db

  # A flat-file store with compression
  aqua init --name heads --type file --path ./data`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if connectorType != "memory" && path == "" {
				return fmt.Errorf("--path is required for the %s backend", connectorType)
			}

			cfgPath := configPath
			if cfgPath == "" {
				cfgPath = config.DefaultFilename
			}
			if _, err := os.Stat(cfgPath); err == nil {
				return fmt.Errorf("config file %s already exists", cfgPath)
			}

			log.Info().
				Str("name", name).
				Str("type", connectorType).
				Str("path", path).
				Msg("Initializing store")

			cfg := config.Default(name, connectorType, path)
			if err := cfg.Write(cfgPath); err != nil {
				return err
			}
			fmt.Printf("✓ Created config file: %s\n", cfgPath)

			// Open once so the backend is created and migrated.
			st, err := store.Open(cmd.Context(), cfg, store.Options{})
			if err != nil {
				return fmt.Errorf("create storage backend: %w", err)
			}
			defer st.Close()
			fmt.Printf("✓ Initialized %s backend\n", connectorType)

			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "aquastore", "store name")
	cmd.Flags().StringVar(&connectorType, "type", "sqlite", "storage backend (memory, file, sqlite, badger)")
	cmd.Flags().StringVar(&path, "path", "", "database file or directory")

	return cmd
}
