package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/aleister1102/docwatch/internal/common"
	"github.com/aleister1102/docwatch/internal/models"
)

// CycleSummary describes the outcome of one completed poll cycle.
type CycleSummary struct {
	Reaped           int
	Changed          bool
	Baseline         bool
	AssetsOnPage     int
	NewAssets        int
	Downloaded       int
	SkippedExisting  int
	SkippedDuplicate int
	Failed           int
	ActiveFiles      int
	TotalChecks      int64
	NewAssetsAllTime int64
}

// Run executes the continuous monitoring loop until the context is cancelled
// or the configured cycle limit is reached. A failing cycle is logged and the
// loop keeps going; only cancellation stops it.
func (s *Service) Run(ctx context.Context) error {
	interval := s.cfg.CheckInterval()
	s.logger.Info().
		Str("page_url", s.pageURL.String()).
		Dur("interval", interval).
		Msg("Starting monitoring loop")

	// One sweep at startup so files expired while the process was down do
	// not wait a full interval for deletion.
	if _, err := s.Cleanup(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Startup cleanup failed")
	}

	for cycle := 1; ; cycle++ {
		summary, err := s.safeCycle(ctx)
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Info().Msg("Monitoring loop stopped")
				return nil
			}
			s.logger.Error().Err(err).Int("cycle", cycle).Msg("Cycle failed, will retry after interval")
		} else {
			s.logSummary(cycle, summary)
		}

		if s.cfg.MaxCycles > 0 && cycle >= s.cfg.MaxCycles {
			s.logger.Info().Int("cycles", cycle).Msg("Reached configured cycle limit, stopping")
			return nil
		}

		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Monitoring loop stopped")
			return nil
		case <-time.After(interval):
		}
	}
}

// RunOnce executes a single poll cycle and returns its summary.
func (s *Service) RunOnce(ctx context.Context) (CycleSummary, error) {
	return s.safeCycle(ctx)
}

// Cleanup runs one TTL sweep under the state lock.
func (s *Service) Cleanup(ctx context.Context) (int, error) {
	if err := s.store.Lock(ctx); err != nil {
		return 0, common.WrapError(err, "could not acquire state lock")
	}
	defer s.store.Unlock()

	return s.reaper.Reap(time.Now())
}

// safeCycle runs one cycle with panic containment: a panicking cycle must not
// take the loop down with it.
func (s *Service) safeCycle(ctx context.Context) (summary CycleSummary, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panicked: %v", r)
		}
	}()
	return s.runCycle(ctx)
}

// runCycle performs one full pass: sweep expired files, fetch and parse the
// listing page, detect changes against persisted state, persist the updated
// state, and retrieve whatever is new. The whole cycle holds the state lock
// so a concurrent one-shot invocation cannot interleave with it.
func (s *Service) runCycle(ctx context.Context) (CycleSummary, error) {
	var summary CycleSummary

	if err := s.store.Lock(ctx); err != nil {
		return summary, common.WrapError(err, "could not acquire state lock")
	}
	defer s.store.Unlock()

	now := time.Now()

	reaped, err := s.reaper.Reap(now)
	if err != nil {
		s.logger.Error().Err(err).Msg("TTL sweep failed, continuing cycle")
	}
	summary.Reaped = reaped

	pageContent, err := s.fetchPage(ctx)
	if err != nil {
		return summary, err
	}

	assets := s.extractor.ExtractAssets(pageContent, s.pageURL)
	summary.AssetsOnPage = len(assets)

	state := s.store.LoadMonitoringState()
	result := s.detector.Detect(assets, state, now)
	summary.Changed = result.Changed
	summary.Baseline = result.Baseline

	if err := s.store.SaveMonitoringState(state); err != nil {
		return summary, common.WrapError(err, "failed to persist monitoring state")
	}
	summary.TotalChecks = state.TotalChecks
	summary.NewAssetsAllTime = state.NewAssetsFound

	newAssets := s.filterByKeyword(result.NewAssets)
	summary.NewAssets = len(newAssets)

	if len(newAssets) > 0 {
		outcomes := s.downloader.Download(ctx, newAssets)
		s.tallyOutcomes(outcomes, &summary, now)
	}

	summary.ActiveFiles = len(s.store.LoadDownloadRecords())
	return summary, nil
}

// tallyOutcomes folds retrieval outcomes into the summary and advances the
// latest-asset pointer past every successful download, in page order.
func (s *Service) tallyOutcomes(outcomes []models.RetrievalOutcome, summary *CycleSummary, now time.Time) {
	for _, outcome := range outcomes {
		switch outcome.Status {
		case models.StatusDownloaded:
			summary.Downloaded++
			s.recordLatestAsset(outcome.Asset, now)
		case models.StatusSkippedExisting:
			summary.SkippedExisting++
		case models.StatusSkippedDuplicateContent:
			summary.SkippedDuplicate++
		case models.StatusFailed:
			summary.Failed++
		}
	}
}

func (s *Service) logSummary(cycle int, summary CycleSummary) {
	s.logger.Info().
		Int("cycle", cycle).
		Int("reaped", summary.Reaped).
		Bool("changed", summary.Changed).
		Bool("baseline", summary.Baseline).
		Int("assets_on_page", summary.AssetsOnPage).
		Int("new_assets", summary.NewAssets).
		Int("downloaded", summary.Downloaded).
		Int("skipped_existing", summary.SkippedExisting).
		Int("skipped_duplicate", summary.SkippedDuplicate).
		Int("failed", summary.Failed).
		Int("active_files", summary.ActiveFiles).
		Int64("total_checks", summary.TotalChecks).
		Msg("Cycle complete")
}
