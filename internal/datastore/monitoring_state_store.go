package datastore

import (
	"path/filepath"

	"github.com/aleister1102/docwatch/internal/common"
	"github.com/aleister1102/docwatch/internal/models"
)

// LoadMonitoringState loads the persisted monitoring state, returning a fresh
// default on any read problem or schema mismatch.
func (s *Store) LoadMonitoringState() *models.MonitoringState {
	path := filepath.Join(s.metadataDir, monitoringStateFilename)

	state := models.NewDefaultMonitoringState()
	if !s.readJSON(path, state) {
		return models.NewDefaultMonitoringState()
	}
	if state.SchemaVersion != models.MonitoringStateSchemaVersion {
		s.logger.Warn().
			Int("found", state.SchemaVersion).
			Int("expected", models.MonitoringStateSchemaVersion).
			Msg("Monitoring state schema version mismatch, using defaults")
		return models.NewDefaultMonitoringState()
	}
	if state.KnownAssetURLs == nil {
		state.KnownAssetURLs = []string{}
	}
	return state
}

// SaveMonitoringState atomically replaces the persisted monitoring state.
func (s *Store) SaveMonitoringState(state *models.MonitoringState) error {
	if state == nil {
		return common.NewError("monitoring state is nil")
	}
	state.SchemaVersion = models.MonitoringStateSchemaVersion
	return s.writeJSON(filepath.Join(s.metadataDir, monitoringStateFilename), state)
}
