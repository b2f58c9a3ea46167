package roi

// DefaultHysteresis is the score margin a new best candidate must clear
// over the previously selected one before the selection switches.
const DefaultHysteresis = 0.15

// Select chooses the primary candidate for the current frame.
//
// The best candidate is the score argmax, ties broken by first-encountered
// order so a fixed candidate ordering always yields the same choice. When
// previousPrimaryID refers to a candidate still present in the current set,
// the previous candidate is kept unless the best one beats it by at least
// hysteresis; momentary score gains are deliberately ignored in favor of
// temporal stability. A previous ID with no match in the current set (the
// face left the frame, or was re-detected under a new ID) disables the
// hysteresis for this frame.
//
// Returns nil when candidates is empty; the caller must treat that as "no
// face this frame". Pure decision function: all statefulness lives in the
// caller-held SelectionState.
//
// The comparison runs in double precision: a best candidate ahead of the
// previous one by exactly the hysteresis margin switches.
func Select(candidates []Candidate, previousPrimaryID *int, hysteresis float64) *Candidate {
	if len(candidates) == 0 {
		return nil
	}

	best := &candidates[0]
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Score > best.Score {
			best = &candidates[i]
		}
	}

	if previousPrimaryID != nil {
		var previous *Candidate
		for i := range candidates {
			if candidates[i].ID == *previousPrimaryID {
				previous = &candidates[i]
				break
			}
		}
		if previous != nil && best.Score-previous.Score < hysteresis {
			return previous
		}
	}

	return best
}
