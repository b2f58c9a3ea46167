// Package roi - Face-candidate scoring and primary region selection.
//
// A detector hands this package a set of face candidates for one frame; the
// scorer enriches them with a sharpness measure and a combined score, and
// the selector picks the single primary candidate, applying temporal
// hysteresis against the primary chosen on the previous frame so the
// tracked region does not flicker between faces of similar quality.
package roi

import "github.com/cine-ai/go-grade/images"

// Candidate represents one face detection within a single frame. IDs are
// stable within one detection call, starting at 0; they are not persisted
// beyond the frame except as the hysteresis linkage in SelectionState.
type Candidate struct {
	// ID is the detector-assigned index within this detection call.
	ID int `json:"id"`
	// Region is the candidate's bounding box, clipped to frame bounds.
	Region images.Region `json:"region"`
	// OriginalRegion is the detector box before ROI expansion, when expansion
	// was applied.
	OriginalRegion images.Region `json:"original_region"`
	// Confidence is the detector confidence in [0,1].
	Confidence float64 `json:"confidence"`
	// Sharpness is the variance of the Laplacian over the candidate region.
	Sharpness float64 `json:"sharpness"`
	// NormalizedSharpness is Sharpness relative to the sharpest candidate
	// of the frame, in [0,1].
	NormalizedSharpness float64 `json:"normalized_sharpness"`
	// Score is the convex combination of confidence and normalized
	// sharpness, in [0,1]. Score arithmetic is double precision so the
	// hysteresis boundary compares exactly.
	Score float64 `json:"score"`
}

// SelectionState is the only state carried between successive frames of one
// clip. It is owned by the caller: passed into each selection and stored
// back from the result. Concurrent sessions over different clips must each
// hold their own instance.
type SelectionState struct {
	PreviousPrimaryID *int `json:"previous_primary_id,omitempty"`
}

// Reset clears the state for the start of a new clip.
func (s *SelectionState) Reset() {
	s.PreviousPrimaryID = nil
}

// Remember records the primary chosen for the current frame.
func (s *SelectionState) Remember(id int) {
	s.PreviousPrimaryID = &id
}

// ExpandAll widens every candidate region about its center so surrounding
// skin area contributes to the exposure statistics. The detector box is kept
// in OriginalRegion.
func ExpandAll(candidates []Candidate, ratio float64, frameWidth, frameHeight int) []Candidate {
	out := make([]Candidate, len(candidates))
	for i, c := range candidates {
		c.OriginalRegion = c.Region
		c.Region = c.Region.Expand(ratio, frameWidth, frameHeight)
		out[i] = c
	}
	return out
}
