package config

import "time"

// DownloaderConfig defines configuration for the retrieval engine and the
// advisory recency prober.
type DownloaderConfig struct {
	// Concurrency is the hard ceiling on simultaneous in-flight transfers.
	Concurrency int `json:"concurrency,omitempty" yaml:"concurrency,omitempty" validate:"omitempty,min=1"`
	// MaxAttempts bounds fetch attempts per asset.
	MaxAttempts int `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty" validate:"omitempty,min=1,max=10"`
	// BaseDelaySecs is the backoff unit: the delay before retry N is
	// N * BaseDelaySecs.
	BaseDelaySecs int `json:"base_delay_secs,omitempty" yaml:"base_delay_secs,omitempty" validate:"omitempty,min=1,max=300"`
	// ArtifactTTLHours is the fixed time-to-live of every downloaded file.
	ArtifactTTLHours int `json:"artifact_ttl_hours,omitempty" yaml:"artifact_ttl_hours,omitempty" validate:"omitempty,min=1"`

	ProbeConcurrency    int `json:"probe_concurrency,omitempty" yaml:"probe_concurrency,omitempty" validate:"omitempty,min=1"`
	ProbeTimeoutSeconds int `json:"probe_timeout_seconds,omitempty" yaml:"probe_timeout_seconds,omitempty" validate:"omitempty,min=1"`
}

// BaseDelay returns the retry backoff unit as a duration.
func (c DownloaderConfig) BaseDelay() time.Duration {
	if c.BaseDelaySecs <= 0 {
		return DefaultDownloadBaseDelaySecs * time.Second
	}
	return time.Duration(c.BaseDelaySecs) * time.Second
}

// ArtifactTTL returns the artifact time-to-live as a duration.
func (c DownloaderConfig) ArtifactTTL() time.Duration {
	if c.ArtifactTTLHours <= 0 {
		return DefaultArtifactTTLHours * time.Hour
	}
	return time.Duration(c.ArtifactTTLHours) * time.Hour
}

// ProbeTimeout returns the HEAD probe timeout as a duration.
func (c DownloaderConfig) ProbeTimeout() time.Duration {
	if c.ProbeTimeoutSeconds <= 0 {
		return DefaultProbeTimeoutSeconds * time.Second
	}
	return time.Duration(c.ProbeTimeoutSeconds) * time.Second
}

// NewDefaultDownloaderConfig creates default downloader configuration
func NewDefaultDownloaderConfig() DownloaderConfig {
	return DownloaderConfig{
		Concurrency:         DefaultDownloadConcurrency,
		MaxAttempts:         DefaultDownloadMaxAttempts,
		BaseDelaySecs:       DefaultDownloadBaseDelaySecs,
		ArtifactTTLHours:    DefaultArtifactTTLHours,
		ProbeConcurrency:    DefaultProbeConcurrency,
		ProbeTimeoutSeconds: DefaultProbeTimeoutSeconds,
	}
}
