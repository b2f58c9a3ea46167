package roi

import "github.com/cine-ai/go-grade/images"

// DefaultSharpnessWeight is the weight of normalized sharpness in the
// combined candidate score; confidence carries the remainder.
const DefaultSharpnessWeight = 0.3

// Sharpness returns the variance of the 3x3 Laplacian over the grayscale
// conversion of the region, a second-derivative edge-energy measure: an
// in-focus face produces strong local intensity changes, a defocused one
// does not. Regions smaller than the kernel yield 0.
//
// Arguments:
// - frame: The frame the region refers to.
// - region: The candidate region, clipped to the frame before use.
//
// Returns:
// - The Laplacian variance; 0 for empty or sub-3x3 regions.
func Sharpness(frame *images.Frame, region images.Region) float64 {
	sub := frame.SubFrame(region)
	if sub.Width < 3 || sub.Height < 3 {
		return 0
	}
	gray := sub.Gray()
	w, h := sub.Width, sub.Height

	n := (w - 2) * (h - 2)
	lap := make([]float64, 0, n)
	var sum float64
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			v := float64(gray[(y-1)*w+x] + gray[(y+1)*w+x] +
				gray[y*w+x-1] + gray[y*w+x+1] - 4*gray[y*w+x])
			lap = append(lap, v)
			sum += v
		}
	}
	mean := sum / float64(n)
	var variance float64
	for _, v := range lap {
		d := v - mean
		variance += d * d
	}
	return variance / float64(n)
}

// ScoreAll computes sharpness, normalized sharpness, and the combined score
// for every candidate:
//
//	score = confidence*(1-w) + normalized_sharpness*w
//
// Normalization divides by the frame's maximum sharpness; when every
// candidate is perfectly flat the normalized values are all 0 rather than
// dividing by zero. Both inputs to the combination are bounded to [0,1], so
// the score is too. The input slice is not mutated; enriched copies are
// returned in the same order, keeping the selection deterministic.
func ScoreAll(candidates []Candidate, frame *images.Frame, sharpnessWeight float64) []Candidate {
	if len(candidates) == 0 {
		return nil
	}

	scored := make([]Candidate, len(candidates))
	copy(scored, candidates)

	var maxSharpness float64
	for i := range scored {
		scored[i].Sharpness = Sharpness(frame, scored[i].Region)
		if scored[i].Sharpness > maxSharpness {
			maxSharpness = scored[i].Sharpness
		}
	}

	for i := range scored {
		if maxSharpness > 0 {
			scored[i].NormalizedSharpness = scored[i].Sharpness / maxSharpness
		} else {
			scored[i].NormalizedSharpness = 0
		}
		scored[i].Score = scored[i].Confidence*(1-sharpnessWeight) +
			scored[i].NormalizedSharpness*sharpnessWeight
	}

	return scored
}
