// Command fractalforge renders deformable Julia fractals, evolves them
// with a genetic engine, and manages the resulting gallery.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fractalforge/internal/genome"
	"fractalforge/internal/model"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "fractalforge",
		Short:         "deformable Julia fractal renderer and evolver",
		SilenceErrors: true,
	}
	cmd.AddCommand(renderCmd())
	cmd.AddCommand(evolveCmd())
	cmd.AddCommand(probeCmd())
	cmd.AddCommand(galleryCmd())
	return cmd
}

// loadGenome reads a gene-record JSON file into a fresh genome. Unknown
// keys are rejected by the importer.
func loadGenome(path string) (model.Genome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Genome{}, fmt.Errorf("read genome %s: %w", path, err)
	}
	var records []model.GeneRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return model.Genome{}, fmt.Errorf("parse genome %s: %w", path, err)
	}
	g := genome.New()
	if err := genome.Import(&g, records); err != nil {
		return model.Genome{}, fmt.Errorf("import genome %s: %w", path, err)
	}
	return g, nil
}

func saveGenome(path string, g *model.Genome) error {
	data, err := json.MarshalIndent(genome.Export(g), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
