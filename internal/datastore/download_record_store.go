package datastore

import (
	"path/filepath"

	"github.com/aleister1102/docwatch/internal/models"
)

// DownloadRecordsSchemaVersion is bumped whenever the persisted record set
// shape changes incompatibly.
const DownloadRecordsSchemaVersion = 1

// downloadRecordsDocument is the on-disk shape of the download record set,
// keyed by filename on disk.
type downloadRecordsDocument struct {
	SchemaVersion int                              `json:"schema_version"`
	Records       map[string]models.DownloadRecord `json:"records"`
}

// LoadDownloadRecords loads the persisted download record set keyed by
// filename on disk, returning an empty set on any read problem or schema
// mismatch.
func (s *Store) LoadDownloadRecords() map[string]models.DownloadRecord {
	path := filepath.Join(s.metadataDir, downloadRecordsFilename)

	var doc downloadRecordsDocument
	if !s.readJSON(path, &doc) {
		return map[string]models.DownloadRecord{}
	}
	if doc.SchemaVersion != DownloadRecordsSchemaVersion {
		s.logger.Warn().
			Int("found", doc.SchemaVersion).
			Int("expected", DownloadRecordsSchemaVersion).
			Msg("Download records schema version mismatch, using empty set")
		return map[string]models.DownloadRecord{}
	}
	if doc.Records == nil {
		return map[string]models.DownloadRecord{}
	}
	return doc.Records
}

// SaveDownloadRecords atomically replaces the persisted download record set.
func (s *Store) SaveDownloadRecords(records map[string]models.DownloadRecord) error {
	doc := downloadRecordsDocument{
		SchemaVersion: DownloadRecordsSchemaVersion,
		Records:       records,
	}
	return s.writeJSON(filepath.Join(s.metadataDir, downloadRecordsFilename), doc)
}
