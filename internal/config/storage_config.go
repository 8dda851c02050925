package config

// StorageConfig defines where downloaded files and persisted state live.
type StorageConfig struct {
	// DownloadDir holds retrieved files; persisted state documents live in
	// its "metadata" subdirectory.
	DownloadDir string `json:"download_dir,omitempty" yaml:"download_dir,omitempty"`
}

// NewDefaultStorageConfig creates default storage configuration
func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		DownloadDir: DefaultDownloadDir,
	}
}
