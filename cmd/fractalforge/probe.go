package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"fractalforge/internal/evo"
	"fractalforge/internal/fractal"
	"fractalforge/internal/genome"
)

type probeOptions struct {
	genomePath string
	re         float64
	im         float64
	elapsed    float64
	sampleSize int
}

func probeCmd() *cobra.Command {
	opts := probeOptions{}
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "evaluate a single point and report fitness sub-scores",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return runProbe(opts)
		},
	}
	cmd.Flags().StringVar(&opts.genomePath, "genome", "", "gene-record JSON file, empty = defaults")
	cmd.Flags().Float64Var(&opts.re, "re", 0, "point, real component")
	cmd.Flags().Float64Var(&opts.im, "im", 0, "point, imaginary component")
	cmd.Flags().Float64Var(&opts.elapsed, "elapsed", 0, "breathing clock in seconds")
	cmd.Flags().IntVar(&opts.sampleSize, "sample-size", 64, "fitness sample grid size")
	return cmd
}

func runProbe(opts probeOptions) error {
	cfg := fractal.NewConfig()
	if opts.genomePath != "" {
		g, err := loadGenome(opts.genomePath)
		if err != nil {
			return err
		}
		genome.ApplyToFractal(&g, &cfg)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	point := complex(opts.re, opts.im)
	res := cfg.EvaluateAt(point, opts.elapsed)
	smooth := cfg.EvaluateSmoothAt(point, opts.elapsed)

	fmt.Printf("point (%g, %g)  kind %s  c (%g, %g)\n",
		opts.re, opts.im, cfg.Kind, real(cfg.JuliaConstant), imag(cfg.JuliaConstant))
	fmt.Printf("iterations %d  escaped %v  |z|^2 %.6g  smooth %.6f\n",
		res.Iterations, res.Escaped, res.MagnitudeSquared, smooth)

	evaluator, err := evo.NewFitnessEvaluator(opts.sampleSize)
	if err != nil {
		return err
	}
	breakdown := evaluator.Breakdown(&cfg)
	keys := make([]string, 0, len(breakdown))
	for k := range breakdown {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%-16s %.4f\n", k, breakdown[k])
	}
	fmt.Printf("%-16s %.4f\n", "weighted", evaluator.Evaluate(&cfg, evo.DefaultFitnessWeights()))
	return nil
}
