package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"fractalforge/internal/fractal"
	"fractalforge/internal/genome"
)

type renderOptions struct {
	width      int
	height     int
	workers    int
	out        string
	genomePath string
	random     bool
	seed       int64
	complexity float64
	noWild     bool
	unstable   bool
	elapsed    float64
	zoom       float64
	offsetX    float64
	offsetY    float64
	maxIter    int
}

func renderCmd() *cobra.Command {
	opts := renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "render a fractal configuration to a PNG",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return runRender(opts)
		},
	}
	cmd.Flags().IntVar(&opts.width, "width", 1024, "frame width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", 768, "frame height in pixels")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "row workers, 0 = GOMAXPROCS")
	cmd.Flags().StringVar(&opts.out, "out", "fractal.png", "output file")
	cmd.Flags().StringVar(&opts.genomePath, "genome", "", "render from a gene-record JSON file")
	cmd.Flags().BoolVar(&opts.random, "random", false, "generate a procedural configuration")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "seed for --random, 0 = time-based")
	cmd.Flags().Float64Var(&opts.complexity, "complexity-bias", 0.5, "procedural iteration bias in [0,1]")
	cmd.Flags().BoolVar(&opts.noWild, "no-wild", false, "restrict procedural generation to safe deform functions")
	cmd.Flags().BoolVar(&opts.unstable, "unstable", false, "draw the julia constant uniformly instead of near known-good values")
	cmd.Flags().Float64Var(&opts.elapsed, "elapsed", 0, "breathing clock in seconds")
	cmd.Flags().Float64Var(&opts.zoom, "zoom", 1, "view zoom factor")
	cmd.Flags().Float64Var(&opts.offsetX, "offset-x", 0, "view center, real axis")
	cmd.Flags().Float64Var(&opts.offsetY, "offset-y", 0, "view center, imaginary axis")
	cmd.Flags().IntVar(&opts.maxIter, "max-iter", 0, "override iteration cap")
	return cmd
}

func runRender(opts renderOptions) error {
	cfg, err := buildConfig(opts)
	if err != nil {
		return err
	}

	frame := fractal.RenderFrame(&cfg, opts.width, opts.height, opts.workers)

	img := image.NewNRGBA(image.Rect(0, 0, opts.width, opts.height))
	maxIter := float64(cfg.MaxIterations)
	for y := 0; y < opts.height; y++ {
		for x := 0; x < opts.width; x++ {
			img.SetNRGBA(x, y, paletteColor(frame[y*opts.width+x]/maxIter))
		}
	}

	f, err := os.Create(opts.out)
	if err != nil {
		return fmt.Errorf("create %s: %w", opts.out, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", opts.out, err)
	}
	fmt.Printf("wrote %s (%dx%d, %s)\n", opts.out, opts.width, opts.height, cfg.Kind)
	return nil
}

func buildConfig(opts renderOptions) (fractal.Config, error) {
	cfg := fractal.NewConfig()
	if opts.genomePath != "" {
		g, err := loadGenome(opts.genomePath)
		if err != nil {
			return fractal.Config{}, err
		}
		genome.ApplyToFractal(&g, &cfg)
	}
	if opts.random {
		seed := opts.seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		params := fractal.DefaultGenerationParams()
		params.ComplexityBias = opts.complexity
		params.AllowWildFunctions = !opts.noWild
		params.PreferStableFractals = !opts.unstable
		cfg = fractal.Generate(rand.New(rand.NewSource(seed)), params)
	}
	if opts.maxIter > 0 {
		cfg.MaxIterations = opts.maxIter
	}
	cfg.View.Zoom = opts.zoom
	cfg.View.OffsetX = opts.offsetX
	cfg.View.OffsetY = opts.offsetY
	if opts.elapsed > 0 {
		cfg.Breathing.Enabled = true
		cfg.DeformMix = cfg.EffectiveDeformMix(opts.elapsed)
	}
	if err := cfg.Validate(); err != nil {
		return fractal.Config{}, err
	}
	return cfg, nil
}

// paletteColor maps a normalized smooth value onto a cyclic palette.
// Interior points (norm >= 1) stay black.
func paletteColor(norm float64) color.NRGBA {
	if norm >= 1 {
		return color.NRGBA{A: 255}
	}
	t := 6 * math.Pi * norm
	r := 0.5 + 0.5*math.Sin(t)
	g := 0.5 + 0.5*math.Sin(t+2*math.Pi/3)
	b := 0.5 + 0.5*math.Sin(t+4*math.Pi/3)
	scale := math.Sqrt(norm)
	return color.NRGBA{
		R: uint8(255 * r * scale),
		G: uint8(255 * g * scale),
		B: uint8(255 * b * scale),
		A: 255,
	}
}
