package pipeline

import (
	"log"

	"github.com/cine-ai/go-grade/grade"
	"github.com/cine-ai/go-grade/images"
	"github.com/cine-ai/go-grade/roi"
	"github.com/cine-ai/go-grade/scene"
)

// FrameResult is the recorded outcome of one frame within a session.
type FrameResult struct {
	Clip     string   `json:"clip"`
	Frame    int      `json:"frame"`
	Analysis Analysis `json:"analysis"`
	// Skipped marks frames whose detector call failed; the recorded
	// analysis is the scene-rule fallback.
	Skipped bool   `json:"skipped,omitempty"`
	Err     string `json:"error,omitempty"`
	// Flags and Usable verify the correction against the accident rules.
	Flags  []scene.Flag `json:"flags,omitempty"`
	Usable bool         `json:"usable"`
}

// Session analyzes the frames of one clip in order. It owns the clip's
// SelectionState, which is reset at construction and must never be shared
// with another session: hysteresis from one clip must not leak into
// another. A per-frame failure is recorded and skipped, never allowed to
// abort the batch.
type Session struct {
	Analyzer *Analyzer
	Detector FaceDetector
	Clip     string

	state   roi.SelectionState
	results []FrameResult
}

// NewSession creates a session for one clip. Detector may be nil, in which
// case every frame takes the scene-rule path.
func NewSession(analyzer *Analyzer, detector FaceDetector, clip string) *Session {
	s := &Session{
		Analyzer: analyzer,
		Detector: detector,
		Clip:     clip,
	}
	s.state.Reset()
	return s
}

// Process analyzes one frame and records the result.
//
// Routing: with no detector configured the scene-rule path runs; with a
// detector, its candidates (possibly none) go through the face-aware path.
// A detector failure downgrades the frame to the scene-rule path and marks
// it skipped.
func (s *Session) Process(frameIndex int, frame *images.Frame) FrameResult {
	result := FrameResult{Clip: s.Clip, Frame: frameIndex}

	switch {
	case s.Detector == nil:
		result.Analysis = s.Analyzer.AnalyzeSceneRule(frame)
	default:
		candidates, err := s.Detector.Detect(frame)
		if err != nil {
			log.Printf("clip %s frame %d: detector failed, falling back to scene rules: %v", s.Clip, frameIndex, err)
			result.Analysis = s.Analyzer.AnalyzeSceneRule(frame)
			result.Skipped = true
			result.Err = err.Error()
		} else {
			result.Analysis, s.state = s.Analyzer.Analyze(frame, candidates, s.state)
		}
	}

	// Verify the correction on a preview render, the way the host-applied
	// grade would be measured.
	after := scene.ExtractMetrics(grade.Apply(frame, result.Analysis.CDL))
	after.FaceDetected = result.Analysis.Primary != nil
	result.Flags = scene.DetectFlags(after)
	result.Usable = scene.Usable(after, result.Flags)

	s.results = append(s.results, result)
	return result
}

// Results returns every recorded frame result in processing order.
func (s *Session) Results() []FrameResult {
	return s.results
}

// State exposes the current selection state, mainly for tests.
func (s *Session) State() roi.SelectionState {
	return s.state
}
