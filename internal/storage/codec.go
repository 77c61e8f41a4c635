package storage

import (
	"encoding/json"
	"errors"

	"fractalforge/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeGalleryEntry(e model.GalleryEntry) ([]byte, error) {
	return json.Marshal(e)
}

func DecodeGalleryEntry(data []byte) (model.GalleryEntry, error) {
	var entry model.GalleryEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return model.GalleryEntry{}, err
	}
	if err := checkVersion(entry.VersionedRecord); err != nil {
		return model.GalleryEntry{}, err
	}
	return entry, nil
}

func EncodePopulation(population []model.Genome) ([]byte, error) {
	return json.Marshal(population)
}

func DecodePopulation(data []byte) ([]model.Genome, error) {
	var population []model.Genome
	if err := json.Unmarshal(data, &population); err != nil {
		return nil, err
	}
	for _, g := range population {
		if err := checkVersion(g.VersionedRecord); err != nil {
			return nil, err
		}
	}
	return population, nil
}

func EncodeRunStats(s model.RunStats) ([]byte, error) {
	return json.Marshal(s)
}

func DecodeRunStats(data []byte) (model.RunStats, error) {
	var stats model.RunStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return model.RunStats{}, err
	}
	if err := checkVersion(stats.VersionedRecord); err != nil {
		return model.RunStats{}, err
	}
	return stats, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
