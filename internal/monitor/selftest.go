package monitor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aleister1102/docwatch/internal/config"
	"github.com/aleister1102/docwatch/internal/datastore"
	"github.com/aleister1102/docwatch/internal/detector"
	"github.com/aleister1102/docwatch/internal/models"
	"github.com/aleister1102/docwatch/internal/reaper"
)

// SelfTestResult is the outcome of one self-test check.
type SelfTestResult struct {
	Name   string
	Passed bool
	Detail string
}

// SelfTest exercises the pipeline end to end without touching persisted
// state: it fetches the live page, extracts assets from it, and runs the
// fingerprint, state store, and TTL sweep checks against a throwaway
// directory. It returns one result per check and whether all of them passed.
func (s *Service) SelfTest(ctx context.Context) ([]SelfTestResult, bool) {
	var results []SelfTestResult

	pageContent, fetchErr := s.fetchPage(ctx)
	if fetchErr != nil {
		results = append(results, SelfTestResult{
			Name:   "page access",
			Detail: fetchErr.Error(),
		})
	} else {
		results = append(results, SelfTestResult{
			Name:   "page access",
			Passed: true,
			Detail: fmt.Sprintf("fetched %d bytes from %s", len(pageContent), s.pageURL),
		})
	}

	if fetchErr == nil {
		assets := s.extractor.ExtractAssets(pageContent, s.pageURL)
		results = append(results, SelfTestResult{
			Name:   "asset extraction",
			Passed: len(assets) > 0,
			Detail: fmt.Sprintf("found %d assets on page", len(assets)),
		})
		results = append(results, s.testFingerprint(assets))
	}

	results = append(results, s.testStateRoundTrip())
	results = append(results, s.testReaper())

	allPassed := true
	for _, result := range results {
		event := s.logger.Info()
		if !result.Passed {
			allPassed = false
			event = s.logger.Error()
		}
		event.Str("check", result.Name).Bool("passed", result.Passed).Str("detail", result.Detail).Msg("Self-test check")
	}
	return results, allPassed
}

// testFingerprint verifies the digest is deterministic and order-sensitive.
func (s *Service) testFingerprint(assets []models.RemoteAsset) SelfTestResult {
	result := SelfTestResult{Name: "fingerprint stability"}

	first := detector.Fingerprint(assets)
	second := detector.Fingerprint(assets)
	if first != second {
		result.Detail = "same candidate set produced different fingerprints"
		return result
	}

	mutated := append([]models.RemoteAsset{{URL: "https://example.invalid/extra.pdf", Title: "extra"}}, assets...)
	if detector.Fingerprint(mutated) == first {
		result.Detail = "mutated candidate set produced an identical fingerprint"
		return result
	}

	result.Passed = true
	result.Detail = "fingerprint is deterministic and change-sensitive"
	return result
}

// testStateRoundTrip saves and reloads monitoring state in a throwaway store.
func (s *Service) testStateRoundTrip() SelfTestResult {
	result := SelfTestResult{Name: "state store round-trip"}

	scratchDir, err := os.MkdirTemp("", "docwatch-selftest-*")
	if err != nil {
		result.Detail = err.Error()
		return result
	}
	defer os.RemoveAll(scratchDir)

	store, err := datastore.NewStore(config.StorageConfig{DownloadDir: scratchDir}, s.logger)
	if err != nil {
		result.Detail = err.Error()
		return result
	}

	state := models.NewDefaultMonitoringState()
	state.LastFingerprint = "selftest-fingerprint"
	state.TotalChecks = 7
	state.AddKnownAssets([]string{"https://example.invalid/a.pdf"})

	if err := store.SaveMonitoringState(state); err != nil {
		result.Detail = err.Error()
		return result
	}

	loaded := store.LoadMonitoringState()
	if loaded.LastFingerprint != state.LastFingerprint || loaded.TotalChecks != state.TotalChecks || len(loaded.KnownAssetURLs) != 1 {
		result.Detail = "reloaded state does not match what was saved"
		return result
	}

	result.Passed = true
	result.Detail = "monitoring state survives a save/load round-trip"
	return result
}

// testReaper verifies an expired artifact is swept in a throwaway store.
func (s *Service) testReaper() SelfTestResult {
	result := SelfTestResult{Name: "ttl sweep"}

	scratchDir, err := os.MkdirTemp("", "docwatch-selftest-*")
	if err != nil {
		result.Detail = err.Error()
		return result
	}
	defer os.RemoveAll(scratchDir)

	store, err := datastore.NewStore(config.StorageConfig{DownloadDir: scratchDir}, s.logger)
	if err != nil {
		result.Detail = err.Error()
		return result
	}

	expiredPath := filepath.Join(scratchDir, "expired.pdf")
	if err := os.WriteFile(expiredPath, []byte("stale"), 0644); err != nil {
		result.Detail = err.Error()
		return result
	}

	now := time.Now()
	records := map[string]models.DownloadRecord{
		"expired.pdf": {
			FilenameOnDisk: "expired.pdf",
			SourceURL:      "https://example.invalid/expired.pdf",
			DownloadedAt:   now.Add(-48 * time.Hour),
			ExpiresAt:      now.Add(-24 * time.Hour),
		},
	}
	if err := store.SaveDownloadRecords(records); err != nil {
		result.Detail = err.Error()
		return result
	}

	reaped, err := reaper.NewReaper(store, s.logger).Reap(now)
	if err != nil {
		result.Detail = err.Error()
		return result
	}
	if reaped != 1 {
		result.Detail = fmt.Sprintf("expected 1 reaped record, got %d", reaped)
		return result
	}
	if _, err := os.Stat(expiredPath); !os.IsNotExist(err) {
		result.Detail = "expired file still present after sweep"
		return result
	}

	result.Passed = true
	result.Detail = "expired artifact and record were removed"
	return result
}
