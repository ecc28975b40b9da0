package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/aquastore/aquastore/pkg/models"
)

func newCheckCommand() *cobra.Command {
	var (
		r2Threshold float64
		alpha       float64
	)

	cmd := &cobra.Command{
		Use:   "check [models...]",
		Short: "Run reliability checks on solved models",
		Long: `Run the reliability checks on the named models, or on every stored model
when no names are given:

  - goodness of fit (R²) above a threshold
  - no significant autocorrelation in the residuals (Ljung-Box)
  - response time shorter than half the calibration period
  - every gain larger than twice its standard error`,
		Example: `  aqua check
  aqua check well1 --r2 0.8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			opts := models.DefaultCheckOptions()
			opts.R2Threshold = r2Threshold
			opts.AutocorrAlpha = alpha

			reports, err := st.CheckModels(ctx, args, opts)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(reports)
			}

			names := make([]string, 0, len(reports))
			for name := range reports {
				names = append(names, name)
			}
			sort.Strings(names)

			failed := 0
			for _, name := range names {
				report := reports[name]
				status := "✓"
				if !report.Passed() {
					status = "✗"
					failed++
				}
				fmt.Printf("%s %s\n", status, name)
				for _, check := range report.Results {
					mark := "pass"
					if !check.Passed {
						mark = "FAIL"
					}
					fmt.Printf("    [%s] %s\n", mark, check.Name)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d models failed their checks", failed, len(names))
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&r2Threshold, "r2", 0.7, "minimum R² for the fit check")
	cmd.Flags().Float64Var(&alpha, "alpha", 0.05, "significance level for the autocorrelation check")

	return cmd
}
