package models

import (
	"sort"
	"time"
)

// MonitoringStateSchemaVersion is bumped whenever the persisted shape of
// MonitoringState changes incompatibly. Loaders fall back to a fresh default
// state on mismatch.
const MonitoringStateSchemaVersion = 1

// MonitoringState is the persisted singleton describing what has been seen on
// the monitored page so far. It is only ever overwritten, never deleted.
type MonitoringState struct {
	SchemaVersion int `json:"schema_version"`
	// LastFingerprint is an opaque digest of the current candidate-asset set.
	LastFingerprint string `json:"last_fingerprint"`
	// KnownAssetURLs is the set of all asset URLs ever seen, kept sorted for
	// stable serialization. It grows monotonically across the run.
	KnownAssetURLs []string   `json:"known_asset_urls"`
	TotalChecks    int64      `json:"total_checks"`
	NewAssetsFound int64      `json:"new_assets_found"`
	LastCheckedAt  *time.Time `json:"last_checked_at,omitempty"`
}

// NewDefaultMonitoringState returns a fresh, empty state.
func NewDefaultMonitoringState() *MonitoringState {
	return &MonitoringState{
		SchemaVersion:  MonitoringStateSchemaVersion,
		KnownAssetURLs: []string{},
	}
}

// IsFirstCheck reports whether no check has ever been recorded.
func (s *MonitoringState) IsFirstCheck() bool {
	return s.TotalChecks == 0 && s.LastFingerprint == ""
}

// HasKnownAsset reports whether the URL is already in the known-asset set.
func (s *MonitoringState) HasKnownAsset(url string) bool {
	i := sort.SearchStrings(s.KnownAssetURLs, url)
	return i < len(s.KnownAssetURLs) && s.KnownAssetURLs[i] == url
}

// AddKnownAssets unions the given URLs into the known-asset set.
func (s *MonitoringState) AddKnownAssets(urls []string) {
	seen := make(map[string]struct{}, len(s.KnownAssetURLs)+len(urls))
	for _, u := range s.KnownAssetURLs {
		seen[u] = struct{}{}
	}
	for _, u := range urls {
		seen[u] = struct{}{}
	}

	merged := make([]string, 0, len(seen))
	for u := range seen {
		merged = append(merged, u)
	}
	sort.Strings(merged)
	s.KnownAssetURLs = merged
}
