package datastore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aleister1102/docwatch/internal/config"
	"github.com/aleister1102/docwatch/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(config.StorageConfig{DownloadDir: t.TempDir()}, zerolog.Nop())
	require.NoError(t, err)
	return store
}

func TestNewStore_CreatesDirectories(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "downloads")
	store, err := NewStore(config.StorageConfig{DownloadDir: dir}, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, dir, store.DownloadDir())
	info, err := os.Stat(filepath.Join(dir, metadataDirName))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestMonitoringState_RoundTrip(t *testing.T) {
	store := newTestStore(t)

	state := models.NewDefaultMonitoringState()
	state.LastFingerprint = "abc123"
	state.TotalChecks = 42
	state.NewAssetsFound = 7
	state.AddKnownAssets([]string{"https://example.com/b.pdf", "https://example.com/a.pdf"})
	checkedAt := time.Now().Truncate(time.Second)
	state.LastCheckedAt = &checkedAt

	require.NoError(t, store.SaveMonitoringState(state))

	loaded := store.LoadMonitoringState()
	assert.Equal(t, "abc123", loaded.LastFingerprint)
	assert.Equal(t, int64(42), loaded.TotalChecks)
	assert.Equal(t, int64(7), loaded.NewAssetsFound)
	assert.Equal(t, []string{"https://example.com/a.pdf", "https://example.com/b.pdf"}, loaded.KnownAssetURLs)
	require.NotNil(t, loaded.LastCheckedAt)
	assert.True(t, loaded.LastCheckedAt.Equal(checkedAt))
}

func TestLoadMonitoringState_MissingFileYieldsDefaults(t *testing.T) {
	store := newTestStore(t)

	state := store.LoadMonitoringState()
	assert.True(t, state.IsFirstCheck())
	assert.Empty(t, state.KnownAssetURLs)
}

func TestLoadMonitoringState_CorruptFileYieldsDefaults(t *testing.T) {
	store := newTestStore(t)
	path := filepath.Join(store.metadataDir, monitoringStateFilename)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	state := store.LoadMonitoringState()
	assert.True(t, state.IsFirstCheck())
}

func TestLoadMonitoringState_SchemaMismatchYieldsDefaults(t *testing.T) {
	store := newTestStore(t)
	path := filepath.Join(store.metadataDir, monitoringStateFilename)
	require.NoError(t, os.WriteFile(path, []byte(`{"schema_version": 99, "last_fingerprint": "stale"}`), 0644))

	state := store.LoadMonitoringState()
	assert.True(t, state.IsFirstCheck())
	assert.Empty(t, state.LastFingerprint)
}

func TestDownloadRecords_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().Truncate(time.Second)

	records := map[string]models.DownloadRecord{
		"doc.pdf": {
			FilenameOnDisk: "doc.pdf",
			SourceURL:      "https://example.com/doc.pdf",
			ContentHash:    "deadbeef",
			SizeBytes:      1024,
			DownloadedAt:   now,
			ExpiresAt:      now.Add(24 * time.Hour),
		},
	}
	require.NoError(t, store.SaveDownloadRecords(records))

	loaded := store.LoadDownloadRecords()
	require.Len(t, loaded, 1)
	record := loaded["doc.pdf"]
	assert.Equal(t, "https://example.com/doc.pdf", record.SourceURL)
	assert.Equal(t, "deadbeef", record.ContentHash)
	assert.Equal(t, int64(1024), record.SizeBytes)
	assert.True(t, record.ExpiresAt.Equal(now.Add(24*time.Hour)))
}

func TestLoadDownloadRecords_MissingFileYieldsEmptySet(t *testing.T) {
	store := newTestStore(t)
	assert.Empty(t, store.LoadDownloadRecords())
}

func TestLatestAsset_RoundTrip(t *testing.T) {
	store := newTestStore(t)

	assert.Nil(t, store.LoadLatestAsset())

	latest := models.LatestAsset{
		Filename:   "doc.pdf",
		Title:      "Doc",
		URL:        "https://example.com/doc.pdf",
		Position:   0,
		RecordedAt: time.Now().Truncate(time.Second),
	}
	require.NoError(t, store.SaveLatestAsset(latest))

	loaded := store.LoadLatestAsset()
	require.NotNil(t, loaded)
	assert.Equal(t, latest.URL, loaded.URL)
	assert.Equal(t, latest.Filename, loaded.Filename)
}

func TestWriteJSON_LeavesNoTempFilesBehind(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SaveMonitoringState(models.NewDefaultMonitoringState()))

	entries, err := os.ReadDir(store.metadataDir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotContains(t, entry.Name(), ".tmp-", "temp file left behind: %s", entry.Name())
	}
}

func TestLock_Reentrancy(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Lock(ctx))
	store.Unlock()
	require.NoError(t, store.Lock(ctx))
	store.Unlock()
}
