package scene

// Severity grades a verification flag.
type Severity string

const (
	// SeverityHigh marks a correction that must not be used.
	SeverityHigh Severity = "high"
	// SeverityMedium marks a correction that needs review.
	SeverityMedium Severity = "medium"
)

// Flag is one triggered post-correction verification rule.
type Flag struct {
	Rule      string   `json:"rule"`
	Severity  Severity `json:"severity"`
	Value     float64  `json:"value"`
	Threshold float64  `json:"threshold"`
}

// Post-correction accident thresholds. These run on metrics measured AFTER
// a candidate correction has been applied.
const (
	HighlightClipRisk  = 0.08
	ShadowCrushRisk    = 0.20
	MidtoneDarkFloor   = 0.28
	MidtoneBrightCeil  = 0.65
	UsableLumaMin      = 0.30
	UsableLumaMax      = 0.62
)

// DetectFlags evaluates the fixed accident rules against post-correction
// metrics and returns every triggered flag.
func DetectFlags(after Metrics) []Flag {
	var flags []Flag
	if after.HighlightRatio > HighlightClipRisk {
		flags = append(flags, Flag{
			Rule: "highlight_clipping_risk", Severity: SeverityHigh,
			Value: after.HighlightRatio, Threshold: HighlightClipRisk,
		})
	}
	if after.ShadowRatio > ShadowCrushRisk {
		flags = append(flags, Flag{
			Rule: "shadow_crush_risk", Severity: SeverityHigh,
			Value: after.ShadowRatio, Threshold: ShadowCrushRisk,
		})
	}
	if after.AvgLuma < MidtoneDarkFloor {
		flags = append(flags, Flag{
			Rule: "midtone_too_dark", Severity: SeverityMedium,
			Value: after.AvgLuma, Threshold: MidtoneDarkFloor,
		})
	}
	if after.AvgLuma > MidtoneBrightCeil {
		flags = append(flags, Flag{
			Rule: "midtone_too_bright", Severity: SeverityMedium,
			Value: after.AvgLuma, Threshold: MidtoneBrightCeil,
		})
	}
	return flags
}

// Usable reports whether a corrected frame is an acceptable candidate: no
// high-severity flags and average luma inside the usable window.
func Usable(after Metrics, flags []Flag) bool {
	for _, f := range flags {
		if f.Severity == SeverityHigh {
			return false
		}
	}
	return after.AvgLuma >= UsableLumaMin && after.AvgLuma <= UsableLumaMax
}
