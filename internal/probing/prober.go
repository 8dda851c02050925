package probing

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/aleister1102/docwatch/internal/config"
	"github.com/aleister1102/docwatch/internal/httpclient"
	"github.com/aleister1102/docwatch/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// RecencyProber annotates assets with an advisory modification time, read
// from the server's Last-Modified header via a HEAD request. The signal is
// advisory only: a missing header, an error, or a timeout falls back to the
// position-based heuristic (earlier position on the page = more recent).
type RecencyProber struct {
	client      *httpclient.Client
	concurrency int
	timeout     time.Duration
	logger      zerolog.Logger
}

// NewRecencyProber creates a new prober
func NewRecencyProber(cfg config.DownloaderConfig, client *httpclient.Client, logger zerolog.Logger) *RecencyProber {
	concurrency := cfg.ProbeConcurrency
	if concurrency <= 0 {
		concurrency = config.DefaultProbeConcurrency
	}

	return &RecencyProber{
		client:      client,
		concurrency: concurrency,
		timeout:     cfg.ProbeTimeout(),
		logger:      logger.With().Str("component", "RecencyProber").Logger(),
	}
}

// Rank probes every asset and returns them ordered most-recent-first, with
// page position as the tie-breaker.
func (p *RecencyProber) Rank(ctx context.Context, assets []models.RemoteAsset) []models.AssetRecency {
	now := time.Now()
	ranked := make([]models.AssetRecency, len(assets))

	sem := semaphore.NewWeighted(int64(p.concurrency))
	var wg sync.WaitGroup
	for i, asset := range assets {
		wg.Add(1)
		go func(i int, asset models.RemoteAsset) {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				ranked[i] = p.positionFallback(asset, now)
				return
			}
			defer sem.Release(1)

			ranked[i] = p.probeOne(ctx, asset, now)
		}(i, asset)
	}
	wg.Wait()

	sort.SliceStable(ranked, func(a, b int) bool {
		if !ranked[a].ModifiedAt.Equal(ranked[b].ModifiedAt) {
			return ranked[a].ModifiedAt.After(ranked[b].ModifiedAt)
		}
		return ranked[a].Asset.Position < ranked[b].Asset.Position
	})
	return ranked
}

// probeOne issues a single bounded HEAD request for the asset.
func (p *RecencyProber) probeOne(ctx context.Context, asset models.RemoteAsset, now time.Time) models.AssetRecency {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	header, err := p.client.Head(probeCtx, asset.URL)
	if err != nil {
		p.logger.Debug().Err(err).Str("url", asset.URL).Msg("HEAD probe failed, using position-based recency")
		return p.positionFallback(asset, now)
	}

	lastModified := header.Get("Last-Modified")
	if lastModified == "" {
		return p.positionFallback(asset, now)
	}

	modifiedAt, err := http.ParseTime(lastModified)
	if err != nil {
		p.logger.Debug().Err(err).Str("url", asset.URL).Msg("Unparseable Last-Modified header, using position-based recency")
		return p.positionFallback(asset, now)
	}

	return models.AssetRecency{
		Asset:      asset,
		ModifiedAt: modifiedAt,
		Source:     models.RecencyFromHeader,
	}
}

// positionFallback dates an asset by its page position: one day older per
// position down the page.
func (p *RecencyProber) positionFallback(asset models.RemoteAsset, now time.Time) models.AssetRecency {
	return models.AssetRecency{
		Asset:      asset,
		ModifiedAt: now.Add(-time.Duration(asset.Position) * 24 * time.Hour),
		Source:     models.RecencyFromPosition,
	}
}
