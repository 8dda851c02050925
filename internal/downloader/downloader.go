package downloader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aleister1102/docwatch/internal/common"
	"github.com/aleister1102/docwatch/internal/config"
	"github.com/aleister1102/docwatch/internal/datastore"
	"github.com/aleister1102/docwatch/internal/httpclient"
	"github.com/aleister1102/docwatch/internal/models"
	"github.com/aleister1102/docwatch/internal/urlhandler"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// Downloader is the retrieval engine: it fetches asset bytes under a hard
// concurrency ceiling, with retry, content-level deduplication, and atomic
// persistence of download records.
type Downloader struct {
	cfg    config.DownloaderConfig
	client *httpclient.Client
	retry  httpclient.RetryPolicy
	store  *datastore.Store
	logger zerolog.Logger
}

// NewDownloader creates a new retrieval engine
func NewDownloader(
	cfg config.DownloaderConfig,
	client *httpclient.Client,
	store *datastore.Store,
	logger zerolog.Logger,
) *Downloader {
	instanceLogger := logger.With().Str("component", "Downloader").Logger()

	return &Downloader{
		cfg:    cfg,
		client: client,
		retry:  httpclient.NewRetryPolicy(cfg.MaxAttempts, cfg.BaseDelay(), instanceLogger),
		store:  store,
		logger: instanceLogger,
	}
}

// batchState is the mutable state shared by all fetches of one batch.
type batchState struct {
	mu      sync.Mutex
	records map[string]models.DownloadRecord
	// inflightHashes reserves content digests between the dedup check and
	// record persistence, so two concurrent fetches of identical content
	// cannot both keep a file.
	inflightHashes map[string]struct{}
	// inflightNames reserves target filenames the same way.
	inflightNames map[string]struct{}
}

// Download retrieves the given assets and returns one outcome per asset, in
// input order. At most cfg.Concurrency transfers are in flight at any moment;
// all of them are joined before the method returns, and the persisted record
// set reflects every completed outcome by then.
func (d *Downloader) Download(ctx context.Context, assets []models.RemoteAsset) []models.RetrievalOutcome {
	outcomes := make([]models.RetrievalOutcome, len(assets))
	if len(assets) == 0 {
		return outcomes
	}

	state := &batchState{
		records:        d.store.LoadDownloadRecords(),
		inflightHashes: make(map[string]struct{}),
		inflightNames:  make(map[string]struct{}),
	}

	limit := d.cfg.Concurrency
	if limit <= 0 {
		limit = config.DefaultDownloadConcurrency
	}
	sem := semaphore.NewWeighted(int64(limit))

	var wg sync.WaitGroup
	for i, asset := range assets {
		wg.Add(1)
		go func(i int, asset models.RemoteAsset) {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				outcomes[i] = models.RetrievalOutcome{Asset: asset, Status: models.StatusFailed, Err: err}
				return
			}
			defer sem.Release(1)

			outcomes[i] = d.retrieveOne(ctx, asset, state)
		}(i, asset)
	}
	wg.Wait()

	return outcomes
}

// retrieveOne runs the full retrieval pipeline for a single asset.
func (d *Downloader) retrieveOne(ctx context.Context, asset models.RemoteAsset, state *batchState) models.RetrievalOutcome {
	now := time.Now()

	safeName := urlhandler.SanitizeFilename(asset.Filename)
	if safeName == "" {
		return models.RetrievalOutcome{
			Asset:  asset,
			Status: models.StatusFailed,
			Err:    common.NewError("asset URL '%s' yields no usable filename", asset.URL),
		}
	}

	// Pre-network check: a live record for this filename means no I/O at all.
	state.mu.Lock()
	if record, exists := state.records[safeName]; exists && !record.IsExpired(now) {
		state.mu.Unlock()
		d.logger.Info().
			Str("file", safeName).
			Time("expires_at", record.ExpiresAt).
			Msg("Skipping asset, already downloaded and not expired")
		return models.RetrievalOutcome{Asset: asset, Status: models.StatusSkippedExisting}
	}
	state.mu.Unlock()

	body, err := d.fetchWithRetry(ctx, asset.URL)
	if err != nil {
		d.logger.Error().Err(err).Str("url", asset.URL).Msg("Failed to download asset after all attempts")
		return models.RetrievalOutcome{Asset: asset, Status: models.StatusFailed, Err: err}
	}

	sum := sha256.Sum256(body)
	contentHash := hex.EncodeToString(sum[:])

	state.mu.Lock()
	if d.hasContent(state, contentHash) {
		state.mu.Unlock()
		d.logger.Info().
			Str("url", asset.URL).
			Str("content_hash", contentHash).
			Msg("Skipping asset, identical content already stored under another name")
		return models.RetrievalOutcome{Asset: asset, Status: models.StatusSkippedDuplicateContent}
	}
	state.inflightHashes[contentHash] = struct{}{}

	finalName := d.reserveFilename(state, safeName)
	state.mu.Unlock()

	defer func() {
		state.mu.Lock()
		delete(state.inflightHashes, contentHash)
		delete(state.inflightNames, finalName)
		state.mu.Unlock()
	}()

	targetPath := filepath.Join(d.store.DownloadDir(), finalName)
	if err := d.writeFile(targetPath, body); err != nil {
		d.logger.Error().Err(err).Str("file", finalName).Msg("Failed to write downloaded file")
		return models.RetrievalOutcome{Asset: asset, Status: models.StatusFailed, Err: err}
	}

	downloadedAt := time.Now()
	record := models.DownloadRecord{
		FilenameOnDisk: finalName,
		SourceURL:      asset.URL,
		ContentHash:    contentHash,
		SizeBytes:      int64(len(body)),
		DownloadedAt:   downloadedAt,
		ExpiresAt:      downloadedAt.Add(d.cfg.ArtifactTTL()),
	}

	// The file is durable before the record exists; if the record cannot be
	// persisted, the orphaned file is deleted before returning.
	state.mu.Lock()
	state.records[finalName] = record
	saveErr := d.store.SaveDownloadRecords(state.records)
	if saveErr != nil {
		delete(state.records, finalName)
	}
	state.mu.Unlock()

	if saveErr != nil {
		os.Remove(targetPath)
		d.logger.Error().Err(saveErr).Str("file", finalName).Msg("Failed to persist download record, removed file")
		return models.RetrievalOutcome{Asset: asset, Status: models.StatusFailed, Err: saveErr}
	}

	d.logger.Info().
		Str("file", finalName).
		Int64("size_bytes", record.SizeBytes).
		Time("expires_at", record.ExpiresAt).
		Msg("Downloaded asset")
	return models.RetrievalOutcome{Asset: asset, Status: models.StatusDownloaded, Record: &record}
}

// fetchWithRetry fetches the asset bytes under the retry policy. Hard client
// errors (404 and friends) fail immediately without spending attempts.
func (d *Downloader) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := d.retry.Execute(ctx, url, func(ctx context.Context) error {
		resp, err := d.client.Get(ctx, url)
		if err != nil {
			var httpErr *common.HTTPError
			if errors.As(err, &httpErr) && !httpclient.RetryableStatus(httpErr.StatusCode) {
				return httpclient.Permanent(err)
			}
			return err
		}
		body = resp.Body
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// hasContent reports whether the digest matches any persisted or in-flight
// record. Caller holds state.mu.
func (d *Downloader) hasContent(state *batchState, contentHash string) bool {
	if _, inflight := state.inflightHashes[contentHash]; inflight {
		return true
	}
	for _, record := range state.records {
		if record.ContentHash == contentHash {
			return true
		}
	}
	return false
}

// reserveFilename picks a collision-safe final filename: if the candidate is
// taken by a record, an in-flight download, or an unrelated file on disk, a
// numeric suffix is appended before the extension. Caller holds state.mu.
func (d *Downloader) reserveFilename(state *batchState, safeName string) string {
	ext := filepath.Ext(safeName)
	stem := strings.TrimSuffix(safeName, ext)

	candidate := safeName
	for n := 1; ; n++ {
		if !d.filenameTaken(state, candidate) {
			break
		}
		candidate = fmt.Sprintf("%s_%d%s", stem, n, ext)
	}

	state.inflightNames[candidate] = struct{}{}
	return candidate
}

func (d *Downloader) filenameTaken(state *batchState, name string) bool {
	if _, exists := state.records[name]; exists {
		return true
	}
	if _, inflight := state.inflightNames[name]; inflight {
		return true
	}
	_, err := os.Stat(filepath.Join(d.store.DownloadDir(), name))
	return err == nil
}

// writeFile writes the payload to a temp file, syncs it, and renames it into
// place so no partially written file is ever visible under the final name.
func (d *Downloader) writeFile(targetPath string, body []byte) error {
	dir := filepath.Dir(targetPath)
	tmp, err := os.CreateTemp(dir, filepath.Base(targetPath)+".part-*")
	if err != nil {
		return common.WrapError(err, "failed to create temp download file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return common.WrapError(err, "failed to write download payload")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return common.WrapError(err, "failed to sync download payload")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return common.WrapError(err, "failed to close download file")
	}

	if err := os.Rename(tmpName, targetPath); err != nil {
		os.Remove(tmpName)
		return common.WrapError(err, "failed to move download into place")
	}
	return nil
}
