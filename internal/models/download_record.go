package models

import "time"

// DownloadRecord is the persisted record of one successfully retrieved
// artifact. It is created exactly once by the retrieval engine and destroyed
// exactly once by the TTL reaper.
type DownloadRecord struct {
	// FilenameOnDisk is the collision-safe name of the file inside the
	// download directory, and the key of the persisted record set.
	FilenameOnDisk string `json:"filename_on_disk"`
	SourceURL      string `json:"source_url"`
	// ContentHash is a hex sha256 digest of the full payload, used for
	// cross-URL content deduplication.
	ContentHash  string    `json:"content_hash"`
	SizeBytes    int64     `json:"size_bytes"`
	DownloadedAt time.Time `json:"downloaded_at"`
	// ExpiresAt is fixed at creation (DownloadedAt + TTL) and never
	// recomputed.
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the record's TTL has elapsed at the given instant.
func (r DownloadRecord) IsExpired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
