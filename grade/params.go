package grade

import (
	"math"

	"github.com/cine-ai/go-grade/stats"
)

// CorrectionParams is the output of one pipeline invocation: a bounded
// exposure offset and contrast multiplier, the decision path that produced
// them, and diagnostic sub-values. Stateless; the caller consumes and
// discards it.
type CorrectionParams struct {
	ExposureEV     float64            `json:"exposure_ev"`
	ContrastFactor float64            `json:"contrast_factor"`
	Method         Method             `json:"method"`
	SkipReason     string             `json:"skip_reason,omitempty"`
	Details        map[string]float64 `json:"details,omitempty"`
}

// Params applies the tolerance gate and the face-path safety envelope to a
// raw exposure estimate and assembles the final correction. Corrections
// within tolerance are forced to 0.0 and tagged rather than dropped, so the
// caller can still see why nothing was applied.
func Params(exposure ExposureResult, contrast float64, roiStats *stats.RegionStats, globalStats stats.RegionStats) CorrectionParams {
	raw := exposure.ExposureEV

	var finalEV float64
	var skipReason string
	if WithinTolerance(raw) {
		finalEV = 0.0
		skipReason = SkipReasonWithinTolerance
	} else {
		finalEV = ClampExposure(raw)
	}

	details := map[string]float64{
		"raw_exposure_ev":    raw,
		"global_exposure_ev": exposure.GlobalEV,
		"global_luma":        globalStats.LumaMean,
		"global_luma_std":    globalStats.LumaStd,
	}
	if exposure.Method == MethodFaceWeighted {
		details["roi_exposure_ev"] = exposure.RoiEV
		if roiStats != nil {
			details["roi_luma"] = roiStats.LumaMean
		}
	}

	return CorrectionParams{
		ExposureEV:     finalEV,
		ContrastFactor: contrast,
		Method:         exposure.Method,
		SkipReason:     skipReason,
		Details:        details,
	}
}

// CDL is the host correction primitive's parameter set in ASC-CDL terms.
type CDL struct {
	Slope      float64 `json:"slope"`
	Offset     float64 `json:"offset"`
	Power      float64 `json:"power"`
	Saturation float64 `json:"saturation"`
}

// ToCDL converts a correction to the exact mapping the host's color
// primitive expects: slope = 2^ev, power = 1/contrast, offset 0,
// saturation 1. Changing this mapping breaks compatibility with grades
// already applied by the host.
func ToCDL(params CorrectionParams) CDL {
	power := 1.0
	if params.ContrastFactor != 0 {
		power = 1.0 / params.ContrastFactor
	}
	return CDL{
		Slope:      math.Exp2(params.ExposureEV),
		Offset:     0.0,
		Power:      power,
		Saturation: 1.0,
	}
}
