package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show (oseries|stress|model) <name>",
		Short: "Show one item of the store",
		Long: `Show a stored item. Series print their range, sample count and metadata;
models print their parameter table and fit statistics.`,
		Example: `  aqua show oseries gw_well1
  aqua show model gw_well1 --json`,
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
			case "oseries", "stress":
				get := st.GetOseries
				if target == "stress" {
					get = st.GetStress
				}
				sr, meta, err := get(ctx, name)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(map[string]interface{}{
						"series":   sr,
						"metadata": meta,
					})
				}
				fmt.Printf("%s %q\n", target, sr.Name)
				fmt.Printf("  samples: %d\n", sr.Len())
				fmt.Printf("  range:   %s to %s\n",
					sr.First().Format("2006-01-02"), sr.Last().Format("2006-01-02"))
				fmt.Printf("  mean:    %.4f\n", sr.Mean())
				for key, value := range meta {
					fmt.Printf("  %s: %v\n", key, value)
				}

			case "model":
				rec, err := st.GetModelRecord(ctx, name)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(rec)
				}
				fmt.Printf("model %q (oseries %q)\n", rec.Name, rec.Oseries)
				for _, term := range rec.Stresses {
					fmt.Printf("  stress %q kind=%s response=%s\n", term.Name, term.Kind, term.Response)
				}
				fmt.Println("  parameters:")
				for _, p := range rec.Parameters {
					fmt.Printf("    %-16s initial=%.4g optimal=%.4g stderr=%.4g\n",
						p.Name, p.Initial, p.Optimal, p.Stderr)
				}
				if rec.Fit != nil {
					fmt.Printf("  fit: evp=%.1f%% r2=%.3f rmse=%.4f aic=%.1f bic=%.1f\n",
						rec.Fit.EVP, rec.Fit.R2, rec.Fit.RMSE, rec.Fit.AIC, rec.Fit.BIC)
				} else {
					fmt.Println("  fit: not solved")
				}

			default:
				return fmt.Errorf("unknown target %q", target)
			}
			return nil
		},
	}

	return cmd
}
