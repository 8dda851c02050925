package monitor

import (
	"sort"
	"time"

	"github.com/aleister1102/docwatch/internal/models"
)

// expiringSoonWindow marks files whose remaining TTL is short enough to
// warrant a heads-up in the status report.
const expiringSoonWindow = time.Hour

// FileStatus describes one active downloaded file.
type FileStatus struct {
	Filename     string
	SourceURL    string
	SizeBytes    int64
	DownloadedAt time.Time
	ExpiresAt    time.Time
	TimeLeft     time.Duration
	ExpiringSoon bool
}

// StatusReport is a read-only snapshot of the monitoring state.
type StatusReport struct {
	PageURL        string
	DownloadDir    string
	CheckInterval  time.Duration
	TotalChecks    int64
	NewAssetsFound int64
	LastCheckedAt  *time.Time
	BaselineSet    bool
	KnownAssets    int
	Latest         *models.LatestAsset
	ActiveFiles    []FileStatus
	TotalSizeBytes int64
	ExpiringSoon   int
}

// Status assembles a snapshot of persisted state and active files. It reads
// without the state lock; the report is advisory and every underlying write
// is atomic, so the worst case is a snapshot that is one cycle stale.
func (s *Service) Status() StatusReport {
	now := time.Now()
	state := s.store.LoadMonitoringState()

	report := StatusReport{
		PageURL:        s.pageURL.String(),
		DownloadDir:    s.store.DownloadDir(),
		CheckInterval:  s.cfg.CheckInterval(),
		TotalChecks:    state.TotalChecks,
		NewAssetsFound: state.NewAssetsFound,
		LastCheckedAt:  state.LastCheckedAt,
		BaselineSet:    !state.IsFirstCheck(),
		KnownAssets:    len(state.KnownAssetURLs),
		Latest:         s.store.LoadLatestAsset(),
	}

	records := s.store.LoadDownloadRecords()
	report.ActiveFiles = make([]FileStatus, 0, len(records))
	for _, record := range records {
		timeLeft := record.ExpiresAt.Sub(now)
		if timeLeft < 0 {
			timeLeft = 0
		}
		file := FileStatus{
			Filename:     record.FilenameOnDisk,
			SourceURL:    record.SourceURL,
			SizeBytes:    record.SizeBytes,
			DownloadedAt: record.DownloadedAt,
			ExpiresAt:    record.ExpiresAt,
			TimeLeft:     timeLeft,
			ExpiringSoon: timeLeft <= expiringSoonWindow,
		}
		report.ActiveFiles = append(report.ActiveFiles, file)
		report.TotalSizeBytes += record.SizeBytes
		if file.ExpiringSoon {
			report.ExpiringSoon++
		}
	}

	sort.Slice(report.ActiveFiles, func(a, b int) bool {
		return report.ActiveFiles[a].ExpiresAt.Before(report.ActiveFiles[b].ExpiresAt)
	})
	return report
}
