package detector

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/aleister1102/docwatch/internal/models"

	"github.com/rs/zerolog"
)

// Detector computes page fingerprints and deltas of newly appeared assets
// against the persisted monitoring state.
type Detector struct {
	logger zerolog.Logger
}

// Result is the outcome of one change-detection pass.
type Result struct {
	// Changed reports whether the fingerprint differs from the last check.
	Changed bool
	// Baseline reports that this was the first-ever check: the candidate set
	// was recorded as the known baseline and must not be treated as a
	// discovery event.
	Baseline bool
	// NewAssets are the candidates whose URLs were not in the known-asset
	// set, in page order.
	NewAssets []models.RemoteAsset
}

// NewDetector creates a new change detector
func NewDetector(logger zerolog.Logger) *Detector {
	return &Detector{
		logger: logger.With().Str("component", "Detector").Logger(),
	}
}

// Fingerprint computes a deterministic digest over the canonical (url, title)
// pairs of the candidate set. It is a pure function of those pairs, so markup
// noise around identical anchors never changes it.
func Fingerprint(candidates []models.RemoteAsset) string {
	var b strings.Builder
	for _, asset := range candidates {
		b.WriteString(asset.URL)
		b.WriteByte('|')
		b.WriteString(asset.Title)
		b.WriteByte('\n')
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Detect compares the candidate set against the persisted state and mutates
// the state in place: counters always advance, and on change the fingerprint
// and known-asset set are updated. The caller persists the state afterwards.
func (d *Detector) Detect(candidates []models.RemoteAsset, state *models.MonitoringState, now time.Time) Result {
	firstCheck := state.IsFirstCheck()

	state.TotalChecks++
	checkedAt := now
	state.LastCheckedAt = &checkedAt

	fingerprint := Fingerprint(candidates)
	if !firstCheck && fingerprint == state.LastFingerprint {
		d.logger.Debug().Msg("No changes detected on page")
		return Result{}
	}

	var newAssets []models.RemoteAsset
	candidateURLs := make([]string, 0, len(candidates))
	for _, asset := range candidates {
		candidateURLs = append(candidateURLs, asset.URL)
		if !state.HasKnownAsset(asset.URL) {
			newAssets = append(newAssets, asset)
		}
	}

	state.LastFingerprint = fingerprint
	state.AddKnownAssets(candidateURLs)

	if firstCheck {
		// The initial population of the known-asset set is baseline-setting,
		// not a discovery event.
		d.logger.Info().Int("assets", len(candidates)).Msg("First check, recorded baseline asset set")
		return Result{Changed: true, Baseline: true}
	}

	state.NewAssetsFound += int64(len(newAssets))
	d.logger.Info().Int("new_assets", len(newAssets)).Msg("Page changed")
	return Result{Changed: true, NewAssets: newAssets}
}
