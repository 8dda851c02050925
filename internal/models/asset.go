package models

import "time"

// RemoteAsset describes a downloadable document discovered on the monitored
// listing page. Instances live for a single poll cycle: they are either folded
// into the known-asset set or turned into a DownloadRecord.
type RemoteAsset struct {
	// URL is the absolute, normalized asset URL and is the identity key.
	URL string `json:"url"`
	// Filename is derived from the URL path.
	Filename string `json:"filename"`
	// Title is a best-effort human label, falling back to a normalized form
	// of the filename when the anchor has no text.
	Title string `json:"title"`
	// Position is the zero-based position of the anchor on the page.
	Position int `json:"position"`
}

// LatestAsset is a persisted pointer to the most recently discovered or
// downloaded asset.
type LatestAsset struct {
	Filename   string    `json:"filename"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Position   int       `json:"position"`
	RecordedAt time.Time `json:"recorded_at"`
}

// AssetRecency annotates an asset with an advisory modification time used
// only for ordering backfill downloads. Source records where the time came
// from: the server's Last-Modified header or the position-based heuristic
// (earlier position on the page = more recent).
type AssetRecency struct {
	Asset      RemoteAsset
	ModifiedAt time.Time
	Source     RecencySource
}

// RecencySource identifies how an asset's advisory timestamp was obtained.
type RecencySource string

const (
	RecencyFromHeader   RecencySource = "http_header"
	RecencyFromPosition RecencySource = "position_based"
)
