// Package gallery keeps the best-found genomes with display metadata. It
// is a shared sink: the evolution worker writes from its callbacks while
// other goroutines query, so every operation locks.
package gallery

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"fractalforge/internal/model"
	"fractalforge/internal/storage"
)

const defaultBaseName = "Fractal"

// Gallery is the in-memory entry set, optionally mirrored to a store.
type Gallery struct {
	mu      sync.Mutex
	entries []model.GalleryEntry
}

func New() *Gallery {
	return &Gallery{}
}

// AddFractal stores a genome snapshot. An empty name is replaced by a
// generated one, made unique by an incrementing numeric suffix.
func (g *Gallery) AddFractal(genome model.Genome, fitness float64, name, description string) model.GalleryEntry {
	g.mu.Lock()
	defer g.mu.Unlock()

	if name == "" {
		name = g.uniqueName(defaultBaseName)
	}
	entry := model.GalleryEntry{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		ID:          uuid.NewString(),
		Genome:      genome,
		Fitness:     fitness,
		Name:        name,
		Description: description,
		Generation:  genome.Generation,
		CreatedAt:   time.Now().UTC(),
	}
	g.entries = append(g.entries, entry)
	return entry
}

// AddEntry inserts a fully formed entry, used when loading from a store.
func (g *Gallery) AddEntry(entry model.GalleryEntry) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.entries = append(g.entries, entry)
}

// RemoveFractal deletes the named entry and reports whether it existed.
func (g *Gallery) RemoveFractal(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, entry := range g.entries {
		if entry.Name == name {
			g.entries = append(g.entries[:i], g.entries[i+1:]...)
			return true
		}
	}
	return false
}

// FindFractal returns a copy of the named entry.
func (g *Gallery) FindFractal(name string) (model.GalleryEntry, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, entry := range g.entries {
		if entry.Name == name {
			return entry, true
		}
	}
	return model.GalleryEntry{}, false
}

// GetAllFractals copies every entry in insertion order.
func (g *Gallery) GetAllFractals() []model.GalleryEntry {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]model.GalleryEntry, len(g.entries))
	copy(out, g.entries)
	return out
}

// GetTopFractals returns up to count entries sorted descending by fitness.
func (g *Gallery) GetTopFractals(count int) []model.GalleryEntry {
	sorted := g.GetAllFractals()
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Fitness > sorted[j].Fitness
	})
	if count < len(sorted) {
		sorted = sorted[:count]
	}
	return sorted
}

// SearchByTags returns entries whose tag string contains the query,
// case-insensitively.
func (g *Gallery) SearchByTags(query string) []model.GalleryEntry {
	query = strings.ToLower(query)
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []model.GalleryEntry
	for _, entry := range g.entries {
		if strings.Contains(strings.ToLower(entry.Tags), query) {
			out = append(out, entry)
		}
	}
	return out
}

// GetFractalsByGeneration returns entries created between minGen and
// maxGen inclusive.
func (g *Gallery) GetFractalsByGeneration(minGen, maxGen int) []model.GalleryEntry {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []model.GalleryEntry
	for _, entry := range g.entries {
		if entry.Generation >= minGen && entry.Generation <= maxGen {
			out = append(out, entry)
		}
	}
	return out
}

// Count reports the number of entries.
func (g *Gallery) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}

// AverageFitness over all entries; 0 for an empty gallery.
func (g *Gallery) AverageFitness() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.entries) == 0 {
		return 0
	}
	sum := 0.0
	for _, entry := range g.entries {
		sum += entry.Fitness
	}
	return sum / float64(len(g.entries))
}

// BestFractal returns the highest-fitness entry.
func (g *Gallery) BestFractal() (model.GalleryEntry, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.entries) == 0 {
		return model.GalleryEntry{}, false
	}
	best := g.entries[0]
	for _, entry := range g.entries[1:] {
		if entry.Fitness > best.Fitness {
			best = entry
		}
	}
	return best, true
}

// SaveTo writes every entry to the store.
func (g *Gallery) SaveTo(ctx context.Context, store storage.Store) error {
	for _, entry := range g.GetAllFractals() {
		if err := store.SaveGalleryEntry(ctx, entry); err != nil {
			return fmt.Errorf("save gallery entry %s: %w", entry.Name, err)
		}
	}
	return nil
}

// LoadFrom replaces the gallery contents with the store's entries.
func (g *Gallery) LoadFrom(ctx context.Context, store storage.Store) error {
	entries, err := store.ListGalleryEntries(ctx)
	if err != nil {
		return fmt.Errorf("list gallery entries: %w", err)
	}
	g.mu.Lock()
	g.entries = entries
	g.mu.Unlock()
	return nil
}

// uniqueName appends "_1", "_2", ... to base until no entry collides.
// Caller holds g.mu.
func (g *Gallery) uniqueName(base string) string {
	name := base
	for counter := 1; g.nameExists(name); counter++ {
		name = fmt.Sprintf("%s_%d", base, counter)
	}
	return name
}

func (g *Gallery) nameExists(name string) bool {
	for _, entry := range g.entries {
		if entry.Name == name {
			return true
		}
	}
	return false
}
