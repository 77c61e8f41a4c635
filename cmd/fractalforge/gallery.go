package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"fractalforge/internal/gallery"
	"fractalforge/internal/genome"
	"fractalforge/internal/storage"
)

type galleryOptions struct {
	storeKind string
	storePath string
}

func galleryCmd() *cobra.Command {
	opts := galleryOptions{}
	cmd := &cobra.Command{
		Use:   "gallery",
		Short: "inspect saved fractals",
	}
	cmd.PersistentFlags().StringVar(&opts.storeKind, "store", storage.DefaultStoreKind(), "store kind: memory or sqlite")
	cmd.PersistentFlags().StringVar(&opts.storePath, "store-path", "fractalforge.db", "sqlite database path")

	list := &cobra.Command{
		Use:   "list",
		Short: "list all gallery entries",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return withGallery(cmd.Context(), opts, func(gal *gallery.Gallery) error {
				for _, entry := range gal.GetAllFractals() {
					fmt.Printf("%-24s  fitness %.4f  gen %4d  %s\n",
						entry.Name, entry.Fitness, entry.Generation,
						entry.CreatedAt.Format("2006-01-02 15:04"))
				}
				fmt.Printf("%d entries, average fitness %.4f\n", gal.Count(), gal.AverageFitness())
				return nil
			})
		},
	}

	var topCount int
	top := &cobra.Command{
		Use:   "top",
		Short: "show the highest-fitness entries",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return withGallery(cmd.Context(), opts, func(gal *gallery.Gallery) error {
				for i, entry := range gal.GetTopFractals(topCount) {
					fmt.Printf("%2d. %-24s  fitness %.4f  gen %d\n",
						i+1, entry.Name, entry.Fitness, entry.Generation)
				}
				return nil
			})
		},
	}
	top.Flags().IntVar(&topCount, "count", 10, "entries to show")

	var outGenome string
	show := &cobra.Command{
		Use:   "show <name>",
		Short: "show one entry in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return withGallery(cmd.Context(), opts, func(gal *gallery.Gallery) error {
				entry, ok := gal.FindFractal(args[0])
				if !ok {
					return fmt.Errorf("no gallery entry named %q", args[0])
				}
				fmt.Printf("name:        %s\n", entry.Name)
				fmt.Printf("id:          %s\n", entry.ID)
				fmt.Printf("fitness:     %.4f\n", entry.Fitness)
				fmt.Printf("generation:  %d\n", entry.Generation)
				fmt.Printf("created:     %s\n", entry.CreatedAt.Format("2006-01-02 15:04:05"))
				if entry.Description != "" {
					fmt.Printf("description: %s\n", entry.Description)
				}
				if entry.Tags != "" {
					fmt.Printf("tags:        %s\n", entry.Tags)
				}
				for key, score := range entry.FitnessBreakdown {
					fmt.Printf("  %-16s %.4f\n", key, score)
				}
				for _, record := range genome.Export(&entry.Genome) {
					fmt.Printf("  %-18s %+.6f\n", record.Key, record.Value)
				}
				if outGenome != "" {
					return saveGenome(outGenome, &entry.Genome)
				}
				return nil
			})
		},
	}
	show.Flags().StringVar(&outGenome, "out-genome", "", "write the entry's genome as gene-record JSON")

	var removeName string
	remove := &cobra.Command{
		Use:   "remove <name>",
		Short: "delete an entry by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			removeName = args[0]
			store, err := openStore(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer storage.CloseIfSupported(store)
			gal := gallery.New()
			if err := gal.LoadFrom(cmd.Context(), store); err != nil {
				return err
			}
			entry, ok := gal.FindFractal(removeName)
			if !ok {
				return fmt.Errorf("no gallery entry named %q", removeName)
			}
			if err := store.DeleteGalleryEntry(cmd.Context(), entry.ID); err != nil {
				return err
			}
			fmt.Printf("removed %s\n", removeName)
			return nil
		},
	}

	cmd.AddCommand(list, top, show, remove)
	return cmd
}

func openStore(ctx context.Context, opts galleryOptions) (storage.Store, error) {
	store, err := storage.NewStore(opts.storeKind, opts.storePath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func withGallery(ctx context.Context, opts galleryOptions, fn func(*gallery.Gallery) error) error {
	store, err := openStore(ctx, opts)
	if err != nil {
		return err
	}
	defer storage.CloseIfSupported(store)
	gal := gallery.New()
	if err := gal.LoadFrom(ctx, store); err != nil {
		return err
	}
	return fn(gal)
}
