package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRestoreCommand() *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "restore <archive>",
		Short: "Restore a store from a zip archive",
		Long: `Load the contents of an archive created by "aqua export" into the store.
Series are restored before models so that model references resolve.`,
		Example: `  aqua restore heads.zip --overwrite`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open archive: %w", err)
			}
			defer f.Close()
			info, err := f.Stat()
			if err != nil {
				return fmt.Errorf("stat archive: %w", err)
			}

			imported, err := st.ImportArchive(ctx, f, info.Size(), overwrite)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Restored %d items from %s\n", imported, args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace existing items")

	return cmd
}
