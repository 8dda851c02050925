package monitor

import (
	"context"
	"time"

	"github.com/aleister1102/docwatch/internal/common"
	"github.com/aleister1102/docwatch/internal/models"
)

// BackfillSummary describes the outcome of a backfill run.
type BackfillSummary struct {
	AssetsOnPage     int
	Attempted        int
	Downloaded       int
	SkippedExisting  int
	SkippedDuplicate int
	Failed           int
}

// Backfill retrieves every asset currently on the listing page, most recent
// first, independent of change detection. Recency comes from HEAD probes with
// a position-based fallback. The known-asset baseline is untouched: a later
// monitoring run still sees the page exactly as the persisted state left it.
func (s *Service) Backfill(ctx context.Context) (BackfillSummary, error) {
	var summary BackfillSummary

	if err := s.store.Lock(ctx); err != nil {
		return summary, common.WrapError(err, "could not acquire state lock")
	}
	defer s.store.Unlock()

	now := time.Now()

	if _, err := s.reaper.Reap(now); err != nil {
		s.logger.Error().Err(err).Msg("TTL sweep failed, continuing backfill")
	}

	pageContent, err := s.fetchPage(ctx)
	if err != nil {
		return summary, err
	}

	assets := s.extractor.ExtractAssets(pageContent, s.pageURL)
	summary.AssetsOnPage = len(assets)

	candidates := s.filterByKeyword(assets)
	if len(candidates) == 0 {
		s.logger.Info().Msg("No assets to backfill")
		return summary, nil
	}

	ranked := s.prober.Rank(ctx, candidates)
	ordered := make([]models.RemoteAsset, len(ranked))
	for i, entry := range ranked {
		ordered[i] = entry.Asset
		s.logger.Debug().
			Str("file", entry.Asset.Filename).
			Time("modified_at", entry.ModifiedAt).
			Str("recency_source", string(entry.Source)).
			Msg("Ranked asset for backfill")
	}
	summary.Attempted = len(ordered)

	outcomes := s.downloader.Download(ctx, ordered)

	latestRecorded := false
	for _, outcome := range outcomes {
		switch outcome.Status {
		case models.StatusDownloaded:
			summary.Downloaded++
			// The first successful download in ranked order is the most
			// recent asset on the page.
			if !latestRecorded {
				s.recordLatestAsset(outcome.Asset, now)
				latestRecorded = true
			}
		case models.StatusSkippedExisting:
			summary.SkippedExisting++
		case models.StatusSkippedDuplicateContent:
			summary.SkippedDuplicate++
		case models.StatusFailed:
			summary.Failed++
		}
	}

	s.logger.Info().
		Int("attempted", summary.Attempted).
		Int("downloaded", summary.Downloaded).
		Int("skipped_existing", summary.SkippedExisting).
		Int("skipped_duplicate", summary.SkippedDuplicate).
		Int("failed", summary.Failed).
		Msg("Backfill complete")
	return summary, nil
}
