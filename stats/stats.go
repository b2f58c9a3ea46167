// Package stats - Region luminance and saturation statistics.
//
// Compute is the single source of truth for per-region statistics in the
// pipeline: the exposure estimator, the candidate scorer, and the reports
// all consume RegionStats produced here, so the channel definitions and
// normalization are never duplicated at call sites.
package stats

import (
	"math"

	"github.com/cine-ai/go-grade/images"
)

// RegionStats holds the luminance and saturation statistics of a pixel
// region. All channel values are normalized to [0,1] from the 8-bit range.
type RegionStats struct {
	// LumaMean is the mean of the HSV value channel, the luminance proxy.
	LumaMean float64 `json:"luma_mean"`
	// LumaStd is the population standard deviation of the value channel.
	LumaStd float64 `json:"luma_std"`
	// SaturationMean is the mean of the saturation channel.
	SaturationMean float64 `json:"saturation_mean"`
	// SaturationStd is the population standard deviation of the saturation channel.
	SaturationStd float64 `json:"saturation_std"`
	// PixelCount is the number of pixels the statistics were computed over.
	PixelCount int `json:"pixel_count"`
}

// Compute calculates RegionStats over the given region of a frame, or over
// the whole frame when region is nil. A region that clips to zero pixels
// returns the zero value with PixelCount 0; it never errors, so a single
// degenerate frame can never halt a batch. Pure function of the input
// pixels.
func Compute(frame *images.Frame, region *images.Region) RegionStats {
	if frame.Empty() {
		return RegionStats{}
	}

	r := images.Region{X: 0, Y: 0, W: frame.Width, H: frame.Height}
	if region != nil {
		r = region.Clip(frame.Width, frame.Height)
	}
	n := r.Area()
	if n == 0 {
		return RegionStats{}
	}

	var lumaSum, satSum float64
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			pr, pg, pb := frame.At(x, y)
			lumaSum += images.ValueHSV(pr, pg, pb)
			satSum += images.SaturationHSV(pr, pg, pb)
		}
	}
	lumaMean := lumaSum / float64(n)
	satMean := satSum / float64(n)

	var lumaVar, satVar float64
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			pr, pg, pb := frame.At(x, y)
			dl := images.ValueHSV(pr, pg, pb) - lumaMean
			ds := images.SaturationHSV(pr, pg, pb) - satMean
			lumaVar += dl * dl
			satVar += ds * ds
		}
	}

	return RegionStats{
		LumaMean:       lumaMean,
		LumaStd:        math.Sqrt(lumaVar / float64(n)),
		SaturationMean: satMean,
		SaturationStd:  math.Sqrt(satVar / float64(n)),
		PixelCount:     n,
	}
}
