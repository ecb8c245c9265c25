package main

import (
	"fmt"
	"os"

	"flareshield/adapters/excel"
	"flareshield/adapters/rng"
	"flareshield/adapters/synthetic"
	"flareshield/domain/flare"

	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	var (
		seed   int64
		points int
		tMax   float64
		random bool
		out    string
		truth  = flare.DefaultTrueParams()
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print a synthetic light curve as CSV",
		Long: `Generate noisy observations of the flare signal and print them as CSV (t,ydata,ymodel,sigma).

Example: flareshield-cli generate --points 200 --A 1.5 --tau 4 --omega 8 --out curve.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			stream := rng.New("generate", seed)
			gen := synthetic.NewGenerator(synthetic.DefaultGeneratorConfig())

			params := truth.Clamped()
			if random {
				params = gen.RandomTrueParams(stream)
			}
			data, err := gen.Generate(stream, params, points, tMax)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "true params %s\n", params)
			return excel.WriteCSV(w, data)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	cmd.Flags().IntVar(&points, "points", synthetic.DefaultPointCount, "Number of points")
	cmd.Flags().Float64Var(&tMax, "t-max", synthetic.DefaultTMax, "Time span")
	cmd.Flags().Float64Var(&truth.A, "A", truth.A, "True amplitude")
	cmd.Flags().Float64Var(&truth.Tau, "tau", truth.Tau, "True decay time")
	cmd.Flags().Float64Var(&truth.Omega, "omega", truth.Omega, "True angular frequency")
	cmd.Flags().BoolVar(&random, "random", false, "Draw the true params the way a reset does")
	cmd.Flags().StringVar(&out, "out", "", "Write to this file instead of stdout")

	return cmd
}
