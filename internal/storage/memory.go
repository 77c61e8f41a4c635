package storage

import (
	"context"
	"sync"

	"fractalforge/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	entries     map[string]model.GalleryEntry
	entryOrder  []string
	populations map[string][]model.Genome
	runStats    map[string]model.RunStats
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.entries = make(map[string]model.GalleryEntry)
	s.entryOrder = nil
	s.populations = make(map[string][]model.Genome)
	s.runStats = make(map[string]model.RunStats)
	return nil
}

func (s *MemoryStore) SaveGalleryEntry(_ context.Context, entry model.GalleryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[entry.ID]; !exists {
		s.entryOrder = append(s.entryOrder, entry.ID)
	}
	s.entries[entry.ID] = entry
	return nil
}

func (s *MemoryStore) GetGalleryEntry(_ context.Context, id string) (model.GalleryEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	return entry, ok, nil
}

func (s *MemoryStore) ListGalleryEntries(_ context.Context) ([]model.GalleryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.GalleryEntry, 0, len(s.entryOrder))
	for _, id := range s.entryOrder {
		out = append(out, s.entries[id])
	}
	return out, nil
}

func (s *MemoryStore) DeleteGalleryEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
	for i, existing := range s.entryOrder {
		if existing == id {
			s.entryOrder = append(s.entryOrder[:i], s.entryOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) SavePopulation(_ context.Context, runID string, population []model.Genome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.Genome, len(population))
	copy(copied, population)
	s.populations[runID] = copied
	return nil
}

func (s *MemoryStore) GetPopulation(_ context.Context, runID string) ([]model.Genome, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	population, ok := s.populations[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.Genome, len(population))
	copy(copied, population)
	return copied, true, nil
}

func (s *MemoryStore) SaveRunStats(_ context.Context, stats model.RunStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runStats[stats.RunID] = stats
	return nil
}

func (s *MemoryStore) GetRunStats(_ context.Context, runID string) (model.RunStats, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats, ok := s.runStats[runID]
	return stats, ok, nil
}
