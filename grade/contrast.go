package grade

import "github.com/cine-ai/go-grade/stats"

const (
	// ContrastBase is the fixed compensation applied to log-encoded
	// material, which is intentionally flat.
	ContrastBase = 1.25
	// ContrastFlatStd and ContrastBusyStd bound the "normal" luminance
	// spread. Below the flat threshold the image needs extra contrast;
	// above the busy threshold the compensation is eased back to avoid
	// clipping an already spread image.
	ContrastFlatStd = 0.10
	ContrastBusyStd = 0.20
	// ContrastFlatBoost and ContrastBusyEase adjust ContrastBase at the
	// two extremes.
	ContrastFlatBoost = 0.10
	ContrastBusyEase  = -0.05
)

// Contrast derives the contrast multiplier from the global luminance
// spread. Non-log material gets a no-op 1.0; log-encoded material starts at
// ContrastBase and is adjusted by how flat or busy the frame already is.
func Contrast(globalStats stats.RegionStats, logEncoded bool) float64 {
	if !logEncoded {
		return 1.0
	}

	switch {
	case globalStats.LumaStd < ContrastFlatStd:
		return ContrastBase + ContrastFlatBoost
	case globalStats.LumaStd > ContrastBusyStd:
		return ContrastBase + ContrastBusyEase
	default:
		return ContrastBase
	}
}
