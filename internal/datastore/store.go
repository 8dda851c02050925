package datastore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/aleister1102/docwatch/internal/common"
	"github.com/aleister1102/docwatch/internal/config"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
)

const (
	metadataDirName         = "metadata"
	monitoringStateFilename = "monitoring_state.json"
	downloadRecordsFilename = "download_records.json"
	latestAssetFilename     = "latest_asset.json"
	lockFilename            = "state.lock"

	lockRetryDelay = 100 * time.Millisecond
)

// Store owns the on-disk representation of all persisted state: the
// monitoring state singleton, the download record set, and the latest-asset
// pointer. Documents are human-inspectable JSON under the metadata
// subdirectory of the download directory.
//
// Loads degrade gracefully: a missing, corrupt, or schema-mismatched document
// yields a fresh default instead of an error, so a read problem never takes
// down the poll loop. Saves are atomic (temp file + rename in the same
// directory).
type Store struct {
	downloadDir string
	metadataDir string
	fileLock    *flock.Flock
	logger      zerolog.Logger
}

// NewStore creates the store and ensures the download and metadata
// directories exist.
func NewStore(cfg config.StorageConfig, logger zerolog.Logger) (*Store, error) {
	downloadDir := cfg.DownloadDir
	if downloadDir == "" {
		downloadDir = config.DefaultDownloadDir
	}
	metadataDir := filepath.Join(downloadDir, metadataDirName)

	if err := os.MkdirAll(metadataDir, 0755); err != nil {
		return nil, common.WrapError(err, "failed to create metadata directory")
	}

	return &Store{
		downloadDir: downloadDir,
		metadataDir: metadataDir,
		fileLock:    flock.New(filepath.Join(metadataDir, lockFilename)),
		logger:      logger.With().Str("component", "Store").Logger(),
	}, nil
}

// DownloadDir returns the directory holding retrieved files.
func (s *Store) DownloadDir() string {
	return s.downloadDir
}

// Lock acquires the cross-process file lock guarding state mutation. A
// one-shot invocation and a running monitor share the same persisted state;
// the lock serializes their read-modify-write sequences.
func (s *Store) Lock(ctx context.Context) error {
	ok, err := s.fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return common.WrapError(err, "failed to acquire state lock")
	}
	if !ok {
		return common.NewError("state lock not acquired")
	}
	return nil
}

// Unlock releases the cross-process file lock.
func (s *Store) Unlock() {
	if err := s.fileLock.Unlock(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to release state lock")
	}
}

// writeJSON marshals v and atomically replaces the document at path.
func (s *Store) writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return common.WrapError(err, "failed to marshal state document")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return common.WrapError(err, "failed to create temp state file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return common.WrapError(err, "failed to write temp state file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return common.WrapError(err, "failed to sync temp state file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return common.WrapError(err, "failed to close temp state file")
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return common.WrapError(err, "failed to replace state file")
	}
	return nil
}

// readJSON unmarshals the document at path into v. The boolean reports
// whether a usable document was found.
func (s *Store) readJSON(path string, v interface{}) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("path", path).Msg("Could not read state document, using defaults")
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("Could not parse state document, using defaults")
		return false
	}
	return true
}
