package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"flareshield/adapters/charts"
	"flareshield/adapters/excel"
	"flareshield/app"
	"flareshield/domain/flare"
	"flareshield/internal/config"
	"flareshield/ports"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type runFlags struct {
	iterations int
	stepSize   float64
	burnIn     int
	seed       int64
	chains     int
	points     int
	tMax       float64
	dataFile   string
	xlsxOut    string
	plotDir    string
}

func newRunCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one or more independent chains and print their posteriors",
		Long: `Run Metropolis chains over a synthetic light curve (true A=1, tau=5, omega=10) or an
observed one read from --data (.xlsx or .csv with columns t, ydata and optional sigma).

Chains are independent sessions seeded seed, seed+1, ...; no cross-chain diagnostics are computed.

Example: flareshield-cli run --iterations 5000 --chains 4 --xlsx report.xlsx --plot ./charts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			appConfig, err := config.Load()
			if err != nil {
				return err
			}
			opts, err := flags.options(cmd, appConfig)
			if err != nil {
				return err
			}
			if flags.chains < 1 {
				return fmt.Errorf("chains must be at least 1")
			}

			reports, err := runChains(cmd.Context(), opts, flags.chains, flags.burnIn)
			if err != nil {
				return err
			}
			printReports(cmd.OutOrStdout(), reports)
			return export(cmd.Context(), reports, flags)
		},
	}

	cmd.Flags().IntVar(&flags.iterations, "iterations", 0, "Iterations per chain (default MCMC_ITERATIONS)")
	cmd.Flags().Float64Var(&flags.stepSize, "step-size", 0, "Proposal step size (default MCMC_STEP_SIZE)")
	cmd.Flags().IntVar(&flags.burnIn, "burn-in", 0, "Leading draws dropped from the printed posteriors")
	cmd.Flags().Int64Var(&flags.seed, "seed", 0, "Seed of the first chain (default MCMC_SEED)")
	cmd.Flags().IntVar(&flags.chains, "chains", 1, "Number of independent chains")
	cmd.Flags().IntVar(&flags.points, "points", 0, "Synthetic data points (default DATA_POINTS)")
	cmd.Flags().Float64Var(&flags.tMax, "t-max", 0, "Synthetic time span (default DATA_T_MAX)")
	cmd.Flags().StringVar(&flags.dataFile, "data", "", "Observed light curve (.xlsx or .csv)")
	cmd.Flags().StringVar(&flags.xlsxOut, "xlsx", "", "Write each chain report to this workbook")
	cmd.Flags().StringVar(&flags.plotDir, "plot", "", "Write posterior and light curve PNGs to this directory")

	return cmd
}

// options layers explicitly set flags over the environment configuration
func (f runFlags) options(cmd *cobra.Command, appConfig *config.Config) (app.SessionOptions, error) {
	opts := appConfig.SessionOptions()
	if cmd.Flags().Changed("iterations") {
		opts.Config.Iterations = f.iterations
	}
	if cmd.Flags().Changed("step-size") {
		opts.Config.StepSize = f.stepSize
	}
	if cmd.Flags().Changed("points") {
		opts.PointCount = f.points
	}
	if cmd.Flags().Changed("t-max") {
		opts.TMax = f.tMax
	}
	if cmd.Flags().Changed("seed") {
		opts.Config.Seed = f.seed
	}
	if cmd.Flags().Changed("burn-in") {
		opts.Config.BurnIn = f.burnIn
	}

	if f.dataFile != "" {
		data, err := excel.NewDataReader(f.dataFile, excel.DefaultColumnConfig()).ReadObservations(cmd.Context())
		if err != nil {
			return app.SessionOptions{}, fmt.Errorf("failed to read observations: %w", err)
		}
		opts.Data = data
	} else {
		truth := flare.DefaultTrueParams()
		opts.TrueParams = &truth
	}
	return opts, nil
}

// runChains runs independent sessions concurrently; chain i is seeded opts.Config.Seed+i
func runChains(ctx context.Context, opts app.SessionOptions, chains, burnIn int) ([]ports.ChainReport, error) {
	reports := make([]ports.ChainReport, chains)
	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < chains; i++ {
		chainOpts := opts
		chainOpts.Config.Seed = opts.Config.Seed + int64(i)
		g.Go(func() error {
			s, err := app.NewInferenceSession(ctx, app.DefaultDependencies(), chainOpts)
			if err != nil {
				return err
			}
			if _, err := s.Advance(ctx, chainOpts.Config.Iterations); err != nil {
				return fmt.Errorf("chain %d: %w", i, err)
			}
			report, err := s.Report(burnIn)
			if err != nil {
				return fmt.Errorf("chain %d: %w", i, err)
			}
			reports[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func printReports(w io.Writer, reports []ports.ChainReport) {
	for i, r := range reports {
		fmt.Fprintf(w, "Chain %d (seed %d): %d iterations, acceptance %.3f\n",
			i, r.Config.Seed, r.Iterations, r.AcceptanceRate)
		if r.TrueParams != nil {
			fmt.Fprintf(w, "  true     %s\n", *r.TrueParams)
		}
		fmt.Fprintf(w, "  current  %s\n", r.Current)
		for _, p := range r.Posteriors {
			if len(p.Bins) == 0 {
				fmt.Fprintf(w, "  %-6s insufficient samples (%d)\n", p.Key, p.Samples)
				continue
			}
			fmt.Fprintf(w, "  %-6s mean %.4f  median %.4f  sd %.4f  68%% CI [%.4f, %.4f]\n",
				p.Key, p.Mean, p.Median, p.StdDev, p.Interval.Low, p.Interval.High)
		}
	}
}

// export writes every chain; with several chains the chain index is added to each file name
func export(ctx context.Context, reports []ports.ChainReport, flags runFlags) error {
	for i, report := range reports {
		var exporters []ports.ChainExporter
		if flags.xlsxOut != "" {
			exporters = append(exporters, excel.NewReportWriter(chainPath(flags.xlsxOut, i, len(reports))))
		}
		if flags.plotDir != "" {
			if err := os.MkdirAll(flags.plotDir, 0o755); err != nil {
				return fmt.Errorf("failed to create plot directory: %w", err)
			}
			exporters = append(exporters, charts.NewChartExporter(flags.plotDir, fmt.Sprintf("chain%d", i)))
		}
		for _, e := range exporters {
			if err := e.Export(ctx, report); err != nil {
				return err
			}
		}
	}
	return nil
}

func chainPath(path string, index, total int) string {
	if total == 1 {
		return path
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s_chain%d%s", strings.TrimSuffix(path, ext), index, ext)
}
