package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExportCommand() *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the store as a zip archive",
		Long: `Export the full contents of the store as a zip archive with one JSON
document per item. The archive can be restored into any backend with
"aqua restore".`,
		Example: `  aqua export --out heads.zip`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			f, err := os.Create(outFile)
			if err != nil {
				return fmt.Errorf("create archive file: %w", err)
			}
			defer f.Close()

			if err := st.ExportArchive(ctx, f); err != nil {
				return err
			}
			fmt.Printf("✓ Exported store to %s\n", outFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFile, "out", "o", "aquastore.zip", "archive output file")

	return cmd
}
