package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/aquastore/aquastore/pkg/config"
	"github.com/aquastore/aquastore/pkg/connectors"
	"github.com/aquastore/aquastore/pkg/store"
)

func newCopyCommand() *cobra.Command {
	var (
		destConfig string
		overwrite  bool
		libraries  []string
	)

	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy the store to another backend",
		Long: `Copy the contents of the store into the store described by another
configuration file. Used to migrate between backends, e.g. from flat files
to SQLite.`,
		Example: `  # Copy everything into the store of another config
  aqua copy --dest other.yaml

  # Copy only the series libraries
  aqua copy --dest other.yaml --library oseries --library stresses`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			destCfg, err := config.Load(destConfig)
			if err != nil {
				return fmt.Errorf("load destination config %s: %w", destConfig, err)
			}
			dest, err := store.Open(ctx, destCfg, store.Options{})
			if err != nil {
				return fmt.Errorf("open destination store: %w", err)
			}
			defer dest.Close()

			libs := make([]connectors.Library, len(libraries))
			for i, l := range libraries {
				libs[i] = connectors.Library(l)
			}

			copied, err := connectors.Copy(ctx, st.Connector(), dest.Connector(), libs, overwrite)
			if err != nil {
				return err
			}

			log.Info().
				Int("items", copied).
				Str("dest", destCfg.Name).
				Msg("Copied store")
			fmt.Printf("✓ Copied %d items to store %q\n", copied, destCfg.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&destConfig, "dest", "", "destination config file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace existing items in the destination")
	cmd.Flags().StringArrayVar(&libraries, "library", nil, "libraries to copy (default all)")
	_ = cmd.MarkFlagRequired("dest")

	return cmd
}
