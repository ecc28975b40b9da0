package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aquastore/aquastore/pkg/models"
	"github.com/aquastore/aquastore/pkg/store"
)

func newModelCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Create and inspect models",
	}
	cmd.AddCommand(newModelCreateCommand())
	cmd.AddCommand(newModelNearestCommand())
	return cmd
}

func newModelCreateCommand() *cobra.Command {
	var (
		modelName string
		recharge  bool
		response  string
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "create <oseries>",
		Short: "Create a model for an observation series",
		Long: `Create a model for an observation series and store it. With --recharge
the nearest precipitation and evaporation stresses (by x/y metadata) are
attached as stress terms.`,
		Example: `  aqua model create gw_well1 --recharge
  aqua model create gw_well1 --recharge --response gamma --name well1_v2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			rec, err := st.CreateModel(ctx, args[0], store.CreateModelOptions{
				ModelName:   modelName,
				AddRecharge: recharge,
				Response:    models.ResponseType(response),
			})
			if err != nil {
				return err
			}
			if err := st.AddModel(ctx, rec, overwrite); err != nil {
				return err
			}

			fmt.Printf("✓ Created model %q with %d stress terms\n", rec.Name, len(rec.Stresses))
			return nil
		},
	}

	cmd.Flags().StringVar(&modelName, "name", "", "model name (defaults to the oseries name)")
	cmd.Flags().BoolVar(&recharge, "recharge", false, "attach nearest precipitation and evaporation stresses")
	cmd.Flags().StringVar(&response, "response", "", "response type for attached stresses (exponential, gamma)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing model")

	return cmd
}

func newModelNearestCommand() *cobra.Command {
	var (
		kind string
		n    int
	)

	cmd := &cobra.Command{
		Use:   "nearest <oseries>",
		Short: "List stresses nearest to an observation series",
		Example: `  aqua model nearest gw_well1 --kind prec
  aqua model nearest gw_well1 -n 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			neighbors, err := st.NearestStresses(ctx, args[0], kind, n)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(neighbors)
			}
			for _, nb := range neighbors {
				fmt.Printf("%-20s %.1f\n", nb.Name, nb.Distance)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "filter stresses by kind")
	cmd.Flags().IntVarP(&n, "count", "n", 3, "number of neighbors to list")

	return cmd
}
