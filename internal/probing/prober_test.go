package probing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aleister1102/docwatch/internal/config"
	"github.com/aleister1102/docwatch/internal/httpclient"
	"github.com/aleister1102/docwatch/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProber(t *testing.T) *RecencyProber {
	t.Helper()
	client := httpclient.NewClientBuilder(zerolog.Nop()).
		WithTimeout(5 * time.Second).
		Build()
	cfg := config.DownloaderConfig{ProbeConcurrency: 4, ProbeTimeoutSeconds: 2}
	return NewRecencyProber(cfg, client, zerolog.Nop())
}

func TestRank_OrdersByLastModifiedHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/older.pdf":
			w.Header().Set("Last-Modified", "Mon, 01 Jan 2024 00:00:00 GMT")
		case "/newer.pdf":
			w.Header().Set("Last-Modified", "Wed, 01 Jan 2025 00:00:00 GMT")
		}
	}))
	defer server.Close()

	assets := []models.RemoteAsset{
		{URL: server.URL + "/older.pdf", Filename: "older.pdf", Position: 0},
		{URL: server.URL + "/newer.pdf", Filename: "newer.pdf", Position: 1},
	}

	ranked := newTestProber(t).Rank(context.Background(), assets)

	require.Len(t, ranked, 2)
	assert.Equal(t, "newer.pdf", ranked[0].Asset.Filename)
	assert.Equal(t, models.RecencyFromHeader, ranked[0].Source)
	assert.Equal(t, "older.pdf", ranked[1].Asset.Filename)
}

func TestRank_FallsBackToPagePosition(t *testing.T) {
	// No Last-Modified header anywhere.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	assets := []models.RemoteAsset{
		{URL: server.URL + "/top.pdf", Filename: "top.pdf", Position: 0},
		{URL: server.URL + "/middle.pdf", Filename: "middle.pdf", Position: 1},
		{URL: server.URL + "/bottom.pdf", Filename: "bottom.pdf", Position: 2},
	}

	ranked := newTestProber(t).Rank(context.Background(), assets)

	require.Len(t, ranked, 3)
	// Earlier page position reads as more recent.
	assert.Equal(t, "top.pdf", ranked[0].Asset.Filename)
	assert.Equal(t, "bottom.pdf", ranked[2].Asset.Filename)
	for _, entry := range ranked {
		assert.Equal(t, models.RecencyFromPosition, entry.Source)
	}
}

func TestRank_ProbeFailureUsesFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken.pdf" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Last-Modified", "Wed, 01 Jan 2025 00:00:00 GMT")
	}))
	defer server.Close()

	assets := []models.RemoteAsset{
		{URL: server.URL + "/broken.pdf", Filename: "broken.pdf", Position: 0},
		{URL: server.URL + "/fine.pdf", Filename: "fine.pdf", Position: 1},
	}

	ranked := newTestProber(t).Rank(context.Background(), assets)

	require.Len(t, ranked, 2)
	for _, entry := range ranked {
		if entry.Asset.Filename == "broken.pdf" {
			assert.Equal(t, models.RecencyFromPosition, entry.Source)
		} else {
			assert.Equal(t, models.RecencyFromHeader, entry.Source)
		}
	}
}

func TestRank_UnparseableHeaderUsesFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Last-Modified", "not a date")
	}))
	defer server.Close()

	assets := []models.RemoteAsset{{URL: server.URL + "/doc.pdf", Filename: "doc.pdf", Position: 0}}
	ranked := newTestProber(t).Rank(context.Background(), assets)

	require.Len(t, ranked, 1)
	assert.Equal(t, models.RecencyFromPosition, ranked[0].Source)
}

func TestRank_EmptyInput(t *testing.T) {
	ranked := newTestProber(t).Rank(context.Background(), nil)
	assert.Empty(t, ranked)
}
