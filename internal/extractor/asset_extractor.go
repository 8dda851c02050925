package extractor

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/aleister1102/docwatch/internal/config"
	"github.com/aleister1102/docwatch/internal/models"
	"github.com/aleister1102/docwatch/internal/urlhandler"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// AssetExtractor parses the fetched listing page and produces the ordered
// candidate set of downloadable assets. It is stateless: the same markup and
// base URL always yield the same sequence.
type AssetExtractor struct {
	extensions []string
	logger     zerolog.Logger
}

// NewAssetExtractor creates a new extractor instance
func NewAssetExtractor(cfg config.ExtractorConfig, logger zerolog.Logger) *AssetExtractor {
	extensions := cfg.AssetExtensions
	if len(extensions) == 0 {
		extensions = []string{config.DefaultAssetExtension}
	}
	lowered := make([]string, len(extensions))
	for i, ext := range extensions {
		lowered[i] = strings.ToLower(ext)
	}

	return &AssetExtractor{
		extensions: lowered,
		logger:     logger.With().Str("component", "AssetExtractor").Logger(),
	}
}

// ExtractAssets parses the page content and returns all matching asset links
// in page order, deduplicated by resolved URL. Malformed or unresolvable
// anchors are skipped, never fatal.
func (ae *AssetExtractor) ExtractAssets(pageContent []byte, basePageURL *url.URL) []models.RemoteAsset {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(pageContent))
	if err != nil {
		ae.logger.Error().Err(err).Msg("Failed to parse page content")
		return []models.RemoteAsset{}
	}

	assets := make([]models.RemoteAsset, 0, 50)
	seenURLs := make(map[string]struct{})

	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || !ae.matchesExtension(href) {
			return
		}

		absoluteURL, err := urlhandler.ResolveURL(href, basePageURL)
		if err != nil {
			ae.logger.Debug().Err(err).Str("href", href).Msg("Skipping unresolvable asset link")
			return
		}
		if _, dup := seenURLs[absoluteURL]; dup {
			return
		}
		seenURLs[absoluteURL] = struct{}{}

		filename := urlhandler.FilenameFromURL(absoluteURL)
		title := strings.TrimSpace(s.Text())
		if title == "" {
			title = urlhandler.TitleFromFilename(filename)
		}

		assets = append(assets, models.RemoteAsset{
			URL:      absoluteURL,
			Filename: filename,
			Title:    title,
			Position: len(assets),
		})
	})

	ae.logger.Debug().Int("count", len(assets)).Msg("Extracted asset links from page")
	return assets
}

// matchesExtension checks the link target against the configured suffixes,
// ignoring any query string.
func (ae *AssetExtractor) matchesExtension(href string) bool {
	target := strings.ToLower(strings.TrimSpace(href))
	if idx := strings.IndexAny(target, "?#"); idx >= 0 {
		target = target[:idx]
	}
	for _, ext := range ae.extensions {
		if strings.HasSuffix(target, ext) {
			return true
		}
	}
	return false
}
