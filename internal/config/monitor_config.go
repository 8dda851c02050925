package config

import "time"

// MonitorConfig defines configuration for the poll coordinator.
type MonitorConfig struct {
	// PageURL is the single listing page being monitored.
	PageURL              string `json:"page_url" yaml:"page_url" validate:"required,url"`
	CheckIntervalSeconds int    `json:"check_interval_seconds,omitempty" yaml:"check_interval_seconds,omitempty" validate:"omitempty,min=1"`
	HTTPTimeoutSeconds   int    `json:"http_timeout_seconds,omitempty" yaml:"http_timeout_seconds,omitempty" validate:"omitempty,min=1"`
	// PageFetchAttempts bounds retries when fetching the listing page itself.
	PageFetchAttempts int `json:"page_fetch_attempts,omitempty" yaml:"page_fetch_attempts,omitempty" validate:"omitempty,min=1"`
	// FilterKeyword, when set, restricts retrieval to assets whose filename
	// or title contains the keyword (case-insensitive).
	FilterKeyword string `json:"filter_keyword,omitempty" yaml:"filter_keyword,omitempty"`
	// MaxCycles stops the monitor after this many cycles. 0 runs indefinitely.
	MaxCycles          int    `json:"max_cycles,omitempty" yaml:"max_cycles,omitempty" validate:"omitempty,min=0"`
	UserAgent          string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	InsecureSkipVerify bool   `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
}

// CheckInterval returns the poll interval as a duration.
func (c MonitorConfig) CheckInterval() time.Duration {
	if c.CheckIntervalSeconds <= 0 {
		return DefaultCheckIntervalSeconds * time.Second
	}
	return time.Duration(c.CheckIntervalSeconds) * time.Second
}

// HTTPTimeout returns the transport timeout as a duration.
func (c MonitorConfig) HTTPTimeout() time.Duration {
	if c.HTTPTimeoutSeconds <= 0 {
		return DefaultHTTPTimeoutSeconds * time.Second
	}
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// NewDefaultMonitorConfig creates default monitor configuration
func NewDefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		CheckIntervalSeconds: DefaultCheckIntervalSeconds,
		HTTPTimeoutSeconds:   DefaultHTTPTimeoutSeconds,
		PageFetchAttempts:    DefaultPageFetchAttempts,
		MaxCycles:            0,
		UserAgent:            DefaultMonitorUserAgent,
		InsecureSkipVerify:   false,
	}
}
