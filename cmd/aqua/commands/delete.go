package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete (oseries|stress|model) <name>",
		Short: "Delete one item from the store",
		Example: `  aqua delete model gw_well1
  aqua delete stress prec_station`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, name := args[0], args[1]
			ctx := cmd.Context()
			st, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			switch target {
			case "oseries":
				err = st.DeleteOseries(ctx, name)
			case "stress":
				err = st.DeleteStress(ctx, name)
			case "model":
				err = st.DeleteModel(ctx, name)
			default:
				return fmt.Errorf("unknown target %q", target)
			}
			if err != nil {
				return err
			}
			fmt.Printf("✓ Deleted %s %q\n", target, name)
			return nil
		},
	}

	return cmd
}
