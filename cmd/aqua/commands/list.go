package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aquastore/aquastore/pkg/connectors"
)

func newListCommand() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "list [library]",
		Short: "List store contents",
		Long: `List the items of one library (oseries, stresses or models), or the item
counts of every library when no library is given.`,
		Example: `  # Item counts per library
  aqua list

  # All observation series
  aqua list oseries

  # Precipitation stresses only
  aqua list stresses --kind prec`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if len(args) == 0 {
				counts, err := st.Counts(ctx)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(counts)
				}
				for _, lib := range connectors.Libraries() {
					fmt.Printf("%-10s %d\n", lib, counts[lib])
				}
				return nil
			}

			lib := connectors.Library(args[0])
			var names []string
			switch lib {
			case connectors.LibraryOseries:
				names, err = st.OseriesNames(ctx)
			case connectors.LibraryStresses:
				names, err = st.StressNames(ctx, kind)
			case connectors.LibraryModels:
				names, err = st.ModelNames(ctx)
			default:
				return fmt.Errorf("unknown library %q", args[0])
			}
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(names)
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "filter stresses by kind")

	return cmd
}
