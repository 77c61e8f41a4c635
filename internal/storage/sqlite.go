package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"fractalforge/internal/model"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveGalleryEntry(ctx context.Context, entry model.GalleryEntry) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeGalleryEntry(entry)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO gallery_entries (id, name, fitness, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			fitness = excluded.fitness,
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, entry.ID, entry.Name, entry.Fitness, entry.SchemaVersion, entry.CodecVersion, payload)
	return err
}

func (s *SQLiteStore) GetGalleryEntry(ctx context.Context, id string) (model.GalleryEntry, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.GalleryEntry{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM gallery_entries WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.GalleryEntry{}, false, nil
		}
		return model.GalleryEntry{}, false, err
	}

	entry, err := DecodeGalleryEntry(payload)
	if err != nil {
		return model.GalleryEntry{}, false, fmt.Errorf("decode gallery entry %s: %w", id, err)
	}
	return entry, true, nil
}

func (s *SQLiteStore) ListGalleryEntries(ctx context.Context) ([]model.GalleryEntry, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT payload FROM gallery_entries ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.GalleryEntry
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		entry, err := DecodeGalleryEntry(payload)
		if err != nil {
			return nil, fmt.Errorf("decode gallery entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) DeleteGalleryEntry(ctx context.Context, id string) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `DELETE FROM gallery_entries WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) SavePopulation(ctx context.Context, runID string, population []model.Genome) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodePopulation(population)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO populations (run_id, payload)
		VALUES (?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			payload = excluded.payload
	`, runID, payload)
	return err
}

func (s *SQLiteStore) GetPopulation(ctx context.Context, runID string) ([]model.Genome, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM populations WHERE run_id = ?`, runID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	population, err := DecodePopulation(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode population %s: %w", runID, err)
	}
	return population, true, nil
}

func (s *SQLiteStore) SaveRunStats(ctx context.Context, stats model.RunStats) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeRunStats(stats)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO run_stats (run_id, payload)
		VALUES (?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			payload = excluded.payload
	`, stats.RunID, payload)
	return err
}

func (s *SQLiteStore) GetRunStats(ctx context.Context, runID string) (model.RunStats, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.RunStats{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM run_stats WHERE run_id = ?`, runID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.RunStats{}, false, nil
		}
		return model.RunStats{}, false, err
	}

	stats, err := DecodeRunStats(payload)
	if err != nil {
		return model.RunStats{}, false, fmt.Errorf("decode run stats %s: %w", runID, err)
	}
	return stats, true, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS gallery_entries (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			fitness REAL NOT NULL,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS populations (
			run_id TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS run_stats (
			run_id TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		);
	`)
	return err
}
