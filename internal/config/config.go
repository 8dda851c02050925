package config

const (
	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3

	// Monitor Defaults
	DefaultCheckIntervalSeconds = 300
	DefaultHTTPTimeoutSeconds   = 120
	DefaultPageFetchAttempts    = 3
	DefaultMonitorUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	// Downloader Defaults
	DefaultDownloadConcurrency   = 1
	DefaultDownloadMaxAttempts   = 3
	DefaultDownloadBaseDelaySecs = 2
	DefaultArtifactTTLHours      = 24

	// Probing Defaults
	DefaultProbeConcurrency    = 8
	DefaultProbeTimeoutSeconds = 10

	// Storage Defaults
	DefaultDownloadDir = "downloads"

	// Extractor Defaults
	DefaultAssetExtension = ".pdf"
)

// GlobalConfig aggregates the per-component configuration sections.
type GlobalConfig struct {
	LogConfig        LogConfig        `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	MonitorConfig    MonitorConfig    `json:"monitor_config,omitempty" yaml:"monitor_config,omitempty"`
	DownloaderConfig DownloaderConfig `json:"downloader_config,omitempty" yaml:"downloader_config,omitempty"`
	ExtractorConfig  ExtractorConfig  `json:"extractor_config,omitempty" yaml:"extractor_config,omitempty"`
	StorageConfig    StorageConfig    `json:"storage_config,omitempty" yaml:"storage_config,omitempty"`
}

// NewDefaultGlobalConfig creates a GlobalConfig with all sections defaulted.
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		LogConfig:        NewDefaultLogConfig(),
		MonitorConfig:    NewDefaultMonitorConfig(),
		DownloaderConfig: NewDefaultDownloaderConfig(),
		ExtractorConfig:  NewDefaultExtractorConfig(),
		StorageConfig:    NewDefaultStorageConfig(),
	}
}
