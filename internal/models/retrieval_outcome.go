package models

// RetrievalStatus classifies the result of retrieving a single asset.
type RetrievalStatus string

const (
	// StatusDownloaded means the asset was fetched and a new file and
	// DownloadRecord now exist.
	StatusDownloaded RetrievalStatus = "downloaded"
	// StatusSkippedExisting means a non-expired record already covered the
	// asset's filename, so no network I/O was performed.
	StatusSkippedExisting RetrievalStatus = "skipped_existing"
	// StatusSkippedDuplicateContent means the fetched bytes matched an
	// existing record's content hash and were discarded.
	StatusSkippedDuplicateContent RetrievalStatus = "skipped_duplicate_content"
	// StatusFailed means all fetch attempts failed or persistence failed.
	StatusFailed RetrievalStatus = "failed"
)

// RetrievalOutcome is the per-asset result of a retrieval batch.
type RetrievalOutcome struct {
	Asset  RemoteAsset
	Status RetrievalStatus
	// Record is set only when Status is StatusDownloaded.
	Record *DownloadRecord
	// Err is set only when Status is StatusFailed.
	Err error
}
