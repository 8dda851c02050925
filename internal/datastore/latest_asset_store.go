package datastore

import (
	"path/filepath"

	"github.com/aleister1102/docwatch/internal/models"
)

// LoadLatestAsset loads the latest-asset pointer, or nil when none has been
// recorded yet.
func (s *Store) LoadLatestAsset() *models.LatestAsset {
	path := filepath.Join(s.metadataDir, latestAssetFilename)

	var latest models.LatestAsset
	if !s.readJSON(path, &latest) {
		return nil
	}
	if latest.URL == "" {
		return nil
	}
	return &latest
}

// SaveLatestAsset atomically replaces the latest-asset pointer.
func (s *Store) SaveLatestAsset(latest models.LatestAsset) error {
	return s.writeJSON(filepath.Join(s.metadataDir, latestAssetFilename), latest)
}
