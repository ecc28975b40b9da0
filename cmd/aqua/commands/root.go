package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
	jsonOutput bool
)

// Execute runs the root command.
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "aqua",
		Short: "Aquastore - timeseries store for hydrological head modeling",
		Long: `Aquastore manages observation and stress timeseries together with the
transfer-function models built on them, on top of a pluggable storage
backend (in-memory, flat files, SQLite or Badger).

Typical workflow:
  - import observation and stress series from CSV files
  - create models that link an observation series to nearby stresses
  - solve the models and inspect their fit statistics
  - run reliability checks and export the database as an archive`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newShowCommand())
	rootCmd.AddCommand(newDeleteCommand())
	rootCmd.AddCommand(newModelCommand())
	rootCmd.AddCommand(newSolveCommand())
	rootCmd.AddCommand(newCheckCommand())
	rootCmd.AddCommand(newCopyCommand())
	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newRestoreCommand())

	return rootCmd
}
