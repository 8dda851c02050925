package monitor

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/aleister1102/docwatch/internal/common"
	"github.com/aleister1102/docwatch/internal/config"
	"github.com/aleister1102/docwatch/internal/datastore"
	"github.com/aleister1102/docwatch/internal/detector"
	"github.com/aleister1102/docwatch/internal/downloader"
	"github.com/aleister1102/docwatch/internal/extractor"
	"github.com/aleister1102/docwatch/internal/httpclient"
	"github.com/aleister1102/docwatch/internal/models"
	"github.com/aleister1102/docwatch/internal/probing"
	"github.com/aleister1102/docwatch/internal/reaper"
	"github.com/aleister1102/docwatch/internal/urlhandler"

	"github.com/rs/zerolog"
)

// Service is the poll coordinator. It owns the cycle sequence
// (reap → detect → retrieve → persist → sleep) and the lifecycle of the
// resources used by one monitoring run. Cycles execute strictly one at a
// time; the only internal concurrency is the fan-out inside the retrieval
// engine.
type Service struct {
	cfg       config.MonitorConfig
	pageURL   *url.URL
	client    *httpclient.Client
	pageRetry httpclient.RetryPolicy

	store      *datastore.Store
	extractor  *extractor.AssetExtractor
	detector   *detector.Detector
	downloader *downloader.Downloader
	prober     *probing.RecencyProber
	reaper     *reaper.Reaper

	logger zerolog.Logger
}

// NewService wires a monitoring service from the global configuration.
func NewService(gCfg *config.GlobalConfig, logger zerolog.Logger) (*Service, error) {
	if err := urlhandler.ValidateURLFormat(gCfg.MonitorConfig.PageURL); err != nil {
		return nil, common.WrapError(err, "invalid page URL")
	}
	pageURL, err := url.Parse(gCfg.MonitorConfig.PageURL)
	if err != nil {
		return nil, common.WrapError(err, "could not parse page URL")
	}

	serviceLogger := logger.With().Str("component", "MonitorService").Logger()

	store, err := datastore.NewStore(gCfg.StorageConfig, logger)
	if err != nil {
		return nil, common.WrapError(err, "failed to initialize state store")
	}

	client := httpclient.NewClientBuilder(logger).
		WithTimeout(gCfg.MonitorConfig.HTTPTimeout()).
		WithUserAgent(gCfg.MonitorConfig.UserAgent).
		WithInsecureSkipVerify(gCfg.MonitorConfig.InsecureSkipVerify).
		Build()

	pageAttempts := gCfg.MonitorConfig.PageFetchAttempts
	if pageAttempts <= 0 {
		pageAttempts = config.DefaultPageFetchAttempts
	}

	return &Service{
		cfg:        gCfg.MonitorConfig,
		pageURL:    pageURL,
		client:     client,
		pageRetry:  httpclient.NewRetryPolicy(pageAttempts, gCfg.DownloaderConfig.BaseDelay(), serviceLogger),
		store:      store,
		extractor:  extractor.NewAssetExtractor(gCfg.ExtractorConfig, logger),
		detector:   detector.NewDetector(logger),
		downloader: downloader.NewDownloader(gCfg.DownloaderConfig, client, store, logger),
		prober:     probing.NewRecencyProber(gCfg.DownloaderConfig, client, logger),
		reaper:     reaper.NewReaper(store, logger),
		logger:     serviceLogger,
	}, nil
}

// Store exposes the state store for read-only inspection (status reporting).
func (s *Service) Store() *datastore.Store {
	return s.store
}

// fetchPage retrieves the listing page markup under the page retry policy.
func (s *Service) fetchPage(ctx context.Context) ([]byte, error) {
	var body []byte
	err := s.pageRetry.Execute(ctx, s.pageURL.String(), func(ctx context.Context) error {
		resp, err := s.client.Get(ctx, s.pageURL.String())
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
		return nil, common.WrapError(err, "failed to fetch listing page")
	}
	return body, nil
}

// filterByKeyword keeps only assets whose filename or title contains the
// configured keyword, case-insensitively. An empty keyword passes everything.
func (s *Service) filterByKeyword(assets []models.RemoteAsset) []models.RemoteAsset {
	keyword := strings.ToLower(strings.TrimSpace(s.cfg.FilterKeyword))
	if keyword == "" {
		return assets
	}

	filtered := make([]models.RemoteAsset, 0, len(assets))
	for _, asset := range assets {
		haystack := strings.ToLower(asset.Filename + " " + asset.Title)
		if strings.Contains(haystack, keyword) {
			filtered = append(filtered, asset)
		}
	}

	s.logger.Info().
		Str("keyword", keyword).
		Int("matched", len(filtered)).
		Int("total", len(assets)).
		Msg("Applied keyword filter")
	return filtered
}

// recordLatestAsset updates the persisted latest-asset pointer.
func (s *Service) recordLatestAsset(asset models.RemoteAsset, now time.Time) {
	latest := models.LatestAsset{
		Filename:   asset.Filename,
		Title:      asset.Title,
		URL:        asset.URL,
		Position:   asset.Position,
		RecordedAt: now,
	}
	if err := s.store.SaveLatestAsset(latest); err != nil {
		s.logger.Error().Err(err).Str("url", asset.URL).Msg("Could not save latest asset pointer")
		return
	}
	s.logger.Info().Str("file", asset.Filename).Msg("Updated latest asset pointer")
}
