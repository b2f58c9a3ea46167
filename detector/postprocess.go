package detector

import (
	"sort"

	"github.com/chewxy/math32"

	"github.com/cine-ai/go-grade/images"
	"github.com/cine-ai/go-grade/roi"
)

// rowStride is the per-candidate layout the face models emit:
// center-x, center-y, width, height, score, all in input pixels.
const rowStride = 5

// Sigmoid squashes a raw logit into [0,1].
func Sigmoid(x float32) float32 {
	return 1.0 / (1.0 + math32.Exp(-x))
}

// Postprocess decodes a model's raw output into candidates in frame
// coordinates: score filtering, IoU suppression of duplicate boxes, mapping
// through the letterbox geometry, clipping to frame bounds, and assignment
// of per-call IDs starting at 0. Surviving candidates are ordered by
// descending score, so the ID order is deterministic for identical input.
func Postprocess(raw []float32, cfg Config, lb Letterbox, frameWidth, frameHeight int) []roi.Candidate {
	type scored struct {
		region     images.Region
		confidence float32
	}

	var kept []scored
	for off := 0; off+rowStride <= len(raw); off += rowStride {
		score := raw[off+4]
		if cfg.ScoresAreLogits {
			score = Sigmoid(score)
		}
		if score < cfg.MinConfidence {
			continue
		}

		cx, cy := float64(raw[off]), float64(raw[off+1])
		w, h := float64(raw[off+2]), float64(raw[off+3])
		x1, y1 := lb.ToFrame(cx-w/2, cy-h/2)
		x2, y2 := lb.ToFrame(cx+w/2, cy+h/2)

		region := images.Region{
			X: int(x1),
			Y: int(y1),
			W: int(x2 - x1),
			H: int(y2 - y1),
		}.Clip(frameWidth, frameHeight)
		if region.Empty() {
			continue
		}
		kept = append(kept, scored{region: region, confidence: score})
	}

	// Highest score first; ties keep model output order.
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].confidence > kept[j].confidence
	})

	// Greedy NMS.
	suppressed := make([]bool, len(kept))
	var candidates []roi.Candidate
	for i := range kept {
		if suppressed[i] {
			continue
		}
		candidates = append(candidates, roi.Candidate{
			ID:         len(candidates),
			Region:     kept[i].region,
			Confidence: float64(kept[i].confidence),
		})
		for j := i + 1; j < len(kept); j++ {
			if suppressed[j] {
				continue
			}
			if kept[i].region.IoU(kept[j].region) > float64(cfg.NMSThreshold) {
				suppressed[j] = true
			}
		}
	}

	return candidates
}
