package storage

import (
	"context"

	"fractalforge/internal/model"
)

// Store defines persistence for gallery entries, evolved populations and
// per-run statistics.
type Store interface {
	Init(ctx context.Context) error
	SaveGalleryEntry(ctx context.Context, entry model.GalleryEntry) error
	GetGalleryEntry(ctx context.Context, id string) (model.GalleryEntry, bool, error)
	ListGalleryEntries(ctx context.Context) ([]model.GalleryEntry, error)
	DeleteGalleryEntry(ctx context.Context, id string) error
	SavePopulation(ctx context.Context, runID string, population []model.Genome) error
	GetPopulation(ctx context.Context, runID string) ([]model.Genome, bool, error)
	SaveRunStats(ctx context.Context, stats model.RunStats) error
	GetRunStats(ctx context.Context, runID string) (model.RunStats, bool, error)
}
