// Package scene - Rule-based scene classification, the fallback path when
// no face-detector signal exists. Coarse whole-frame metrics select one of
// three fixed scene profiles, each clamped to a stricter safety envelope
// than the face-aware estimator uses.
package scene

import "github.com/cine-ai/go-grade/images"

const (
	// HighlightThreshold and ShadowThreshold split the 0-255 luma range
	// into highlight, midtone, and shadow populations.
	HighlightThreshold = 230
	ShadowThreshold    = 25
)

// Metrics are the coarse whole-frame measurements the classifier rules run
// on. The luma here uses Rec.709 weighting and the saturation the HSL
// definition, matching the host's thumbnail analysis rather than the HSV
// channels the region statistics use.
type Metrics struct {
	AvgLuma        float64 `json:"avg_luma"`
	HighlightRatio float64 `json:"highlight_ratio"`
	ShadowRatio    float64 `json:"shadow_ratio"`
	SaturationAvg  float64 `json:"saturation_avg"`
	FaceDetected   bool    `json:"face_detected"`
}

// DefaultMetrics is what an unusable frame resolves to: neutral mid luma,
// nothing else. The classifier maps it to the conservative default profile.
func DefaultMetrics() Metrics {
	return Metrics{AvgLuma: 0.5}
}

// ExtractMetrics computes classifier metrics over a whole frame. A nil or
// empty frame yields DefaultMetrics rather than an error; a missing
// thumbnail must never halt a batch.
func ExtractMetrics(frame *images.Frame) Metrics {
	if frame.Empty() {
		return DefaultMetrics()
	}

	total := frame.Width * frame.Height
	var lumaSum, satSum float64
	var highlights, shadows int

	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			r, g, b := frame.At(x, y)
			luma := images.Luma709(r, g, b)
			lumaSum += luma
			if luma >= HighlightThreshold {
				highlights++
			} else if luma <= ShadowThreshold {
				shadows++
			}
			satSum += images.SaturationHSL(r, g, b)
		}
	}

	return Metrics{
		AvgLuma:        lumaSum / float64(total) / 255.0,
		HighlightRatio: float64(highlights) / float64(total),
		ShadowRatio:    float64(shadows) / float64(total),
		SaturationAvg:  satSum / float64(total),
	}
}
