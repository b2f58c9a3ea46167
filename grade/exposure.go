// Package grade - Exposure and contrast estimation.
//
// Turns region and whole-frame statistics into a single bounded correction:
// an EV (base-2 stop) exposure offset and a contrast multiplier. All targets
// and envelopes are fixed design constants; the math is deterministic so two
// runs over the same frame produce bit-identical parameters.
package grade

import (
	"math"

	"github.com/cine-ai/go-grade/stats"
)

const (
	// SkinTargetLuma is the ideal skin luminance in display-referred
	// material, slightly above middle gray.
	SkinTargetLuma = 0.50
	// ExposureTolerance suppresses corrections smaller than this many
	// stops; near-neutral frames would otherwise flicker between tiny
	// positive and negative corrections.
	ExposureTolerance = 0.05
	// LogMiddleGray is where 18% gray sits in log-encoded material.
	LogMiddleGray = 0.41
	// MaxExposureEV and MinExposureEV bound the face-aware correction.
	// The envelope is deliberately asymmetric: brightening has more
	// headroom than darkening.
	MaxExposureEV = 2.0
	MinExposureEV = -1.0
	// FaceWeight and GlobalWeight blend the region and whole-frame
	// exposure estimates when a primary face region exists.
	FaceWeight   = 0.7
	GlobalWeight = 0.3
)

// Method identifies which decision path produced a correction.
type Method string

const (
	// MethodFaceWeighted blends primary-region and global exposure.
	MethodFaceWeighted Method = "face_weighted"
	// MethodGlobalOnly uses whole-frame statistics alone.
	MethodGlobalOnly Method = "global_only"
	// MethodSceneRule is the rule-based fallback without detector signal.
	MethodSceneRule Method = "scene_rule"
)

// SkipReasonWithinTolerance tags corrections suppressed by the tolerance
// gate.
const SkipReasonWithinTolerance = "within_tolerance"

// ExposureResult carries the combined exposure estimate plus the two
// component estimates for diagnostics.
type ExposureResult struct {
	ExposureEV float64 `json:"exposure_ev"`
	RoiEV      float64 `json:"roi_exposure_ev"`
	GlobalEV   float64 `json:"global_exposure_ev"`
	Method     Method  `json:"method"`
}

// ExposureForSkin returns the EV offset that moves the region luminance to
// the skin target: log2(target/current). A degenerate region (luma <= 0)
// yields 0 rather than an infinite correction.
func ExposureForSkin(roiLuma float64) float64 {
	if roiLuma <= 0 {
		return 0.0
	}
	return math.Log2(SkinTargetLuma / roiLuma)
}

// ExposureForGlobal returns the EV offset that moves the whole-frame
// luminance to middle gray. Log-encoded material targets the log curve's
// 18% gray position instead of 0.5.
func ExposureForGlobal(globalLuma float64, logEncoded bool) float64 {
	if globalLuma <= 0 {
		return 0.0
	}
	target := 0.5
	if logEncoded {
		target = LogMiddleGray
	}
	return math.Log2(target / globalLuma)
}

// CombinedExposure blends the primary-region and global exposure estimates.
// With a primary region the result is FaceWeight*roi + GlobalWeight*global
// (method face_weighted); without one, the global estimate stands alone
// (method global_only). Clamping and the tolerance gate are applied by the
// caller, not here.
func CombinedExposure(roiStats *stats.RegionStats, globalStats stats.RegionStats, hasPrimary, logEncoded bool) ExposureResult {
	globalEV := ExposureForGlobal(globalStats.LumaMean, logEncoded)

	if hasPrimary && roiStats != nil {
		roiEV := ExposureForSkin(roiStats.LumaMean)
		return ExposureResult{
			ExposureEV: roiEV*FaceWeight + globalEV*GlobalWeight,
			RoiEV:      roiEV,
			GlobalEV:   globalEV,
			Method:     MethodFaceWeighted,
		}
	}

	return ExposureResult{
		ExposureEV: globalEV,
		GlobalEV:   globalEV,
		Method:     MethodGlobalOnly,
	}
}

// ClampExposure bounds an EV correction to the face-aware safety envelope
// [MinExposureEV, MaxExposureEV]. Idempotent and monotonic.
func ClampExposure(ev float64) float64 {
	return math.Max(MinExposureEV, math.Min(MaxExposureEV, ev))
}

// WithinTolerance reports whether a correction is too small to apply.
func WithinTolerance(ev float64) bool {
	return math.Abs(ev) < ExposureTolerance
}
