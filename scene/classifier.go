package scene

import (
	"math"

	"github.com/cine-ai/go-grade/grade"
)

// Type is one of the three terminal scene labels.
type Type string

const (
	// TypeOutdoorDay is a bright, saturated exterior.
	TypeOutdoorDay Type = "outdoor_day"
	// TypeIndoorHuman is the neutral default and the label for any frame
	// with a detected face.
	TypeIndoorHuman Type = "indoor_human"
	// TypeNight is a dark, shadow-heavy exterior.
	TypeNight Type = "night"
)

// Classification thresholds, evaluated in fixed priority order.
const (
	LumaHigh         = 0.55
	LumaLow          = 0.35
	SaturationHigh   = 0.35
	ShadowRatioNight = 0.25
)

// The scene-rule path runs without any face signal, so its envelope is
// tighter than the face-aware one. The two envelopes are intentionally
// distinct; do not unify them.
const (
	SceneMinExposureEV = -1.0
	SceneMaxExposureEV = 1.0
	SceneMinContrast   = 0.8
	SceneMaxContrast   = 1.3
)

// Profile is the fixed correction attached to a scene label.
type Profile struct {
	ExposureEV      float64 `json:"exposure_ev"`
	ContrastFactor  float64 `json:"contrast_factor"`
	SaturationBoost float64 `json:"saturation_boost"`
}

var profiles = map[Type]Profile{
	TypeOutdoorDay:  {ExposureEV: -0.3, ContrastFactor: 1.05, SaturationBoost: 1.0},
	TypeIndoorHuman: {ExposureEV: 0.0, ContrastFactor: 1.0, SaturationBoost: 1.0},
	TypeNight:       {ExposureEV: 0.5, ContrastFactor: 1.15, SaturationBoost: 0.9},
}

// ProfileFor returns the fixed profile for a scene label; unknown labels
// resolve to the conservative indoor profile.
func ProfileFor(t Type) Profile {
	if p, ok := profiles[t]; ok {
		return p
	}
	return profiles[TypeIndoorHuman]
}

// Classify maps metrics to a scene label. Rules run in fixed priority
// order; the first match wins:
//
//  1. A detected face always classifies as indoor_human.
//  2. Bright and saturated classifies as outdoor_day.
//  3. Dark and shadow-heavy classifies as night.
//  4. Everything else falls back to indoor_human, the most conservative.
func Classify(m Metrics) Type {
	if m.FaceDetected {
		return TypeIndoorHuman
	}
	if m.AvgLuma > LumaHigh && m.SaturationAvg > SaturationHigh {
		return TypeOutdoorDay
	}
	if m.AvgLuma < LumaLow && m.ShadowRatio > ShadowRatioNight {
		return TypeNight
	}
	return TypeIndoorHuman
}

// Adjust composes a scene profile onto optional base parameters (exposure
// added, contrast multiplied) and clamps the result to the scene-rule
// safety envelope. With a nil base the result is the clamped profile
// itself. Method is always scene_rule.
func Adjust(t Type, base *grade.CorrectionParams) grade.CorrectionParams {
	p := ProfileFor(t)

	exposure := p.ExposureEV
	contrast := p.ContrastFactor
	if base != nil {
		exposure = base.ExposureEV + p.ExposureEV
		contrast = base.ContrastFactor * p.ContrastFactor
	}

	exposure = math.Max(SceneMinExposureEV, math.Min(SceneMaxExposureEV, exposure))
	contrast = math.Max(SceneMinContrast, math.Min(SceneMaxContrast, contrast))

	return grade.CorrectionParams{
		ExposureEV:     exposure,
		ContrastFactor: contrast,
		Method:         grade.MethodSceneRule,
		Details: map[string]float64{
			"profile_exposure_ev":     p.ExposureEV,
			"profile_contrast_factor": p.ContrastFactor,
			"saturation_boost":        p.SaturationBoost,
		},
	}
}
