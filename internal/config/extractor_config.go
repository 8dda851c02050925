package config

// ExtractorConfig defines configuration for asset extraction from the
// listing page.
type ExtractorConfig struct {
	// AssetExtensions lists the link suffixes treated as downloadable
	// assets. Matching is case-insensitive.
	AssetExtensions []string `json:"asset_extensions,omitempty" yaml:"asset_extensions,omitempty" validate:"omitempty,dive,required"`
}

// NewDefaultExtractorConfig creates default extractor configuration
func NewDefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		AssetExtensions: []string{DefaultAssetExtension},
	}
}
