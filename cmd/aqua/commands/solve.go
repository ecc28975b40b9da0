package commands

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/aquastore/aquastore/pkg/store"
)

func newSolveCommand() *cobra.Command {
	var (
		parallel    int
		dryRun      bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "solve [models...]",
		Short: "Solve models",
		Long: `Solve the named models, or every stored model when no names are given.
Solved parameters and fit statistics are written back to the store unless
--dry-run is set.`,
		Example: `  # Solve everything
  aqua solve

  # Solve two models with four workers and expose Prometheus metrics
  aqua solve well1 well2 --parallel 4 --metrics-addr :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, cfg, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if metricsAddr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", st.Metrics().Handler())
				server := &http.Server{Addr: metricsAddr, Handler: mux}
				go func() {
					if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						log.Error().Err(err).Msg("Metrics server failed")
					}
				}()
				defer server.Close()
			}

			opts := store.DefaultSolveOptions()
			opts.Parallel = parallel
			if opts.Parallel == 0 {
				opts.Parallel = cfg.Solve.Parallel
			}
			if cfg.Solve.MaxIterations > 0 {
				opts.Fit.MaxIterations = cfg.Solve.MaxIterations
			}
			opts.Store = !dryRun

			report, err := st.SolveModels(ctx, args, opts)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(report)
			}
			for _, res := range report.Results {
				if res.Err != nil {
					fmt.Printf("✗ %-20s %v\n", res.Model, res.Err)
					continue
				}
				fmt.Printf("✓ %-20s evp=%.1f%% r2=%.3f\n", res.Model, res.Fit.EVP, res.Fit.R2)
			}
			fmt.Printf("\nSolved %d models in %s (%d failed)\n",
				len(report.Results), report.Duration.Round(time.Millisecond), len(report.Failed()))
			if len(report.Failed()) > 0 {
				return fmt.Errorf("%d models failed to solve", len(report.Failed()))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&parallel, "parallel", 0, "number of solve workers (0 = one per CPU)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "solve without storing the results")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while solving")

	return cmd
}
