package reaper

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aleister1102/docwatch/internal/config"
	"github.com/aleister1102/docwatch/internal/datastore"
	"github.com/aleister1102/docwatch/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *datastore.Store {
	t.Helper()
	store, err := datastore.NewStore(config.StorageConfig{DownloadDir: t.TempDir()}, zerolog.Nop())
	require.NoError(t, err)
	return store
}

func writeArtifact(t *testing.T, store *datastore.Store, name string) string {
	t.Helper()
	path := filepath.Join(store.DownloadDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("payload of "+name), 0644))
	return path
}

func record(name string, downloadedAt time.Time, ttl time.Duration) models.DownloadRecord {
	return models.DownloadRecord{
		FilenameOnDisk: name,
		SourceURL:      "https://example.com/" + name,
		DownloadedAt:   downloadedAt,
		ExpiresAt:      downloadedAt.Add(ttl),
	}
}

func TestReap_RemovesOnlyExpiredFiles(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()
	ttl := 24 * time.Hour

	expiredPath := writeArtifact(t, store, "old.pdf")
	freshPath := writeArtifact(t, store, "fresh.pdf")

	require.NoError(t, store.SaveDownloadRecords(map[string]models.DownloadRecord{
		"old.pdf":   record("old.pdf", now.Add(-25*time.Hour), ttl),
		"fresh.pdf": record("fresh.pdf", now.Add(-1*time.Hour), ttl),
	}))

	reaper := NewReaper(store, zerolog.Nop())
	reaped, err := reaper.Reap(now)
	require.NoError(t, err)
	assert.Equal(t, 1, reaped)

	_, err = os.Stat(expiredPath)
	assert.True(t, os.IsNotExist(err), "expired file must be gone")
	_, err = os.Stat(freshPath)
	assert.NoError(t, err, "fresh file must survive")

	records := store.LoadDownloadRecords()
	assert.NotContains(t, records, "old.pdf")
	assert.Contains(t, records, "fresh.pdf")
}

func TestReap_ExactTTLBoundary(t *testing.T) {
	store := newTestStore(t)
	ttl := 24 * time.Hour
	downloadedAt := time.Now().Add(-ttl)

	writeArtifact(t, store, "boundary.pdf")
	writeArtifact(t, store, "almost.pdf")

	require.NoError(t, store.SaveDownloadRecords(map[string]models.DownloadRecord{
		// Exactly at expiry: reaped.
		"boundary.pdf": record("boundary.pdf", downloadedAt, ttl),
		// One second short of expiry: kept.
		"almost.pdf": record("almost.pdf", downloadedAt.Add(time.Second), ttl),
	}))

	reaper := NewReaper(store, zerolog.Nop())
	reaped, err := reaper.Reap(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, reaped)

	records := store.LoadDownloadRecords()
	assert.NotContains(t, records, "boundary.pdf")
	assert.Contains(t, records, "almost.pdf")
}

func TestReap_ToleratesAlreadyMissingFile(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()

	// Record exists but the file was deleted out of band.
	require.NoError(t, store.SaveDownloadRecords(map[string]models.DownloadRecord{
		"ghost.pdf": record("ghost.pdf", now.Add(-48*time.Hour), 24*time.Hour),
	}))

	reaper := NewReaper(store, zerolog.Nop())
	reaped, err := reaper.Reap(now)
	require.NoError(t, err)
	assert.Equal(t, 1, reaped, "missing file still counts as a completed delete")
	assert.Empty(t, store.LoadDownloadRecords())
}

func TestReap_NothingExpired(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()

	writeArtifact(t, store, "fresh.pdf")
	require.NoError(t, store.SaveDownloadRecords(map[string]models.DownloadRecord{
		"fresh.pdf": record("fresh.pdf", now, 24*time.Hour),
	}))

	reaper := NewReaper(store, zerolog.Nop())
	reaped, err := reaper.Reap(now)
	require.NoError(t, err)
	assert.Zero(t, reaped)
	assert.Len(t, store.LoadDownloadRecords(), 1)
}

func TestReap_Idempotent(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()

	writeArtifact(t, store, "old.pdf")
	require.NoError(t, store.SaveDownloadRecords(map[string]models.DownloadRecord{
		"old.pdf": record("old.pdf", now.Add(-48*time.Hour), 24*time.Hour),
	}))

	reaper := NewReaper(store, zerolog.Nop())
	first, err := reaper.Reap(now)
	require.NoError(t, err)
	second, err := reaper.Reap(now)
	require.NoError(t, err)

	assert.Equal(t, 1, first)
	assert.Zero(t, second)
}
