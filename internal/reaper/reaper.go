package reaper

import (
	"os"
	"path/filepath"
	"time"

	"github.com/aleister1102/docwatch/internal/common"
	"github.com/aleister1102/docwatch/internal/datastore"

	"github.com/rs/zerolog"
)

// Reaper deletes downloaded files whose TTL has elapsed, together with their
// records. It runs at process start and at the start of every poll cycle;
// both runs are cheap and idempotent, so expiry is accurate to within one
// poll interval.
type Reaper struct {
	store  *datastore.Store
	logger zerolog.Logger
}

// NewReaper creates a new TTL reaper
func NewReaper(store *datastore.Store, logger zerolog.Logger) *Reaper {
	return &Reaper{
		store:  store,
		logger: logger.With().Str("component", "Reaper").Logger(),
	}
}

// Reap removes every expired artifact and its record, returning the number
// of records reaped. A missing file counts as a successful delete, and a
// failed delete is logged and skipped so one locked file never blocks the
// rest of the sweep. The record set is persisted once at the end; a crash
// mid-sweep leaves at worst records whose files are already gone, which the
// next sweep clears.
func (r *Reaper) Reap(now time.Time) (int, error) {
	records := r.store.LoadDownloadRecords()

	reaped := 0
	for filename, record := range records {
		if !record.IsExpired(now) {
			continue
		}

		path := filepath.Join(r.store.DownloadDir(), filename)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			r.logger.Error().Err(err).Str("file", filename).Msg("Could not delete expired file, skipping")
			continue
		}

		delete(records, filename)
		reaped++
		r.logger.Info().
			Str("file", filename).
			Time("expired_at", record.ExpiresAt).
			Msg("Deleted expired file")
	}

	if reaped == 0 {
		return 0, nil
	}

	if err := r.store.SaveDownloadRecords(records); err != nil {
		return reaped, common.WrapError(err, "failed to persist record set after reaping")
	}

	r.logger.Info().Int("count", reaped).Msg("Cleaned up expired files")
	return reaped, nil
}
