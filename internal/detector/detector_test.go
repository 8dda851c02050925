package detector

import (
	"testing"
	"time"

	"github.com/aleister1102/docwatch/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assetList(urls ...string) []models.RemoteAsset {
	assets := make([]models.RemoteAsset, len(urls))
	for i, u := range urls {
		assets[i] = models.RemoteAsset{URL: u, Title: "Title " + u, Position: i}
	}
	return assets
}

func TestFingerprint_Deterministic(t *testing.T) {
	assets := assetList("https://example.com/a.pdf", "https://example.com/b.pdf")

	first := Fingerprint(assets)
	second := Fingerprint(assets)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestFingerprint_IgnoresNothingButPairs(t *testing.T) {
	a := assetList("https://example.com/a.pdf")
	b := assetList("https://example.com/b.pdf")
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))

	// Title changes alone must change the fingerprint too.
	retitled := assetList("https://example.com/a.pdf")
	retitled[0].Title = "different"
	assert.NotEqual(t, Fingerprint(a), Fingerprint(retitled))
}

func TestFingerprint_OrderSensitive(t *testing.T) {
	forward := assetList("https://example.com/a.pdf", "https://example.com/b.pdf")
	reversed := assetList("https://example.com/b.pdf", "https://example.com/a.pdf")

	assert.NotEqual(t, Fingerprint(forward), Fingerprint(reversed))
}

func TestDetect_FirstCheckRecordsBaseline(t *testing.T) {
	d := NewDetector(zerolog.Nop())
	state := models.NewDefaultMonitoringState()
	assets := assetList("https://example.com/a.pdf", "https://example.com/b.pdf")

	result := d.Detect(assets, state, time.Now())

	assert.True(t, result.Changed)
	assert.True(t, result.Baseline)
	assert.Empty(t, result.NewAssets)

	assert.Equal(t, int64(1), state.TotalChecks)
	assert.Equal(t, int64(0), state.NewAssetsFound, "baseline must not count as discovery")
	assert.Equal(t, Fingerprint(assets), state.LastFingerprint)
	assert.True(t, state.HasKnownAsset("https://example.com/a.pdf"))
	assert.True(t, state.HasKnownAsset("https://example.com/b.pdf"))
	require.NotNil(t, state.LastCheckedAt)
}

func TestDetect_UnchangedPage(t *testing.T) {
	d := NewDetector(zerolog.Nop())
	state := models.NewDefaultMonitoringState()
	assets := assetList("https://example.com/a.pdf")

	d.Detect(assets, state, time.Now())
	result := d.Detect(assets, state, time.Now())

	assert.False(t, result.Changed)
	assert.Empty(t, result.NewAssets)
	assert.Equal(t, int64(2), state.TotalChecks, "counters advance even without change")
	assert.Equal(t, int64(0), state.NewAssetsFound)
}

func TestDetect_NewAssetAppears(t *testing.T) {
	d := NewDetector(zerolog.Nop())
	state := models.NewDefaultMonitoringState()

	d.Detect(assetList("https://example.com/a.pdf", "https://example.com/b.pdf"), state, time.Now())

	result := d.Detect(assetList(
		"https://example.com/c.pdf",
		"https://example.com/a.pdf",
		"https://example.com/b.pdf",
	), state, time.Now())

	assert.True(t, result.Changed)
	assert.False(t, result.Baseline)
	require.Len(t, result.NewAssets, 1)
	assert.Equal(t, "https://example.com/c.pdf", result.NewAssets[0].URL)
	assert.Equal(t, int64(1), state.NewAssetsFound)
	assert.True(t, state.HasKnownAsset("https://example.com/c.pdf"))
}

func TestDetect_RemovalChangesFingerprintButFindsNothingNew(t *testing.T) {
	d := NewDetector(zerolog.Nop())
	state := models.NewDefaultMonitoringState()

	d.Detect(assetList("https://example.com/a.pdf", "https://example.com/b.pdf"), state, time.Now())
	result := d.Detect(assetList("https://example.com/a.pdf"), state, time.Now())

	assert.True(t, result.Changed)
	assert.Empty(t, result.NewAssets)
	// Known assets are never forgotten when they leave the page.
	assert.True(t, state.HasKnownAsset("https://example.com/b.pdf"))
}

func TestDetect_ReappearedKnownAssetNotRedownloaded(t *testing.T) {
	d := NewDetector(zerolog.Nop())
	state := models.NewDefaultMonitoringState()

	d.Detect(assetList("https://example.com/a.pdf", "https://example.com/b.pdf"), state, time.Now())
	d.Detect(assetList("https://example.com/a.pdf"), state, time.Now())
	result := d.Detect(assetList("https://example.com/a.pdf", "https://example.com/b.pdf"), state, time.Now())

	assert.True(t, result.Changed)
	assert.Empty(t, result.NewAssets, "reappearing known asset is not new")
}
