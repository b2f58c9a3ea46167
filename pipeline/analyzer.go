// Package pipeline - This file contains the per-frame analyzer that routes
// frame statistics and face candidates to the exposure, contrast, and
// scene-rule estimators.
package pipeline

import (
	"github.com/cine-ai/go-grade/grade"
	"github.com/cine-ai/go-grade/images"
	"github.com/cine-ai/go-grade/roi"
	"github.com/cine-ai/go-grade/scene"
	"github.com/cine-ai/go-grade/stats"
)

// FaceDetector is an interface for a face detector. Implementations return
// candidates with stable per-call IDs starting at 0, already filtered to
// the detector-side minimum confidence.
type FaceDetector interface {
	Detect(frame *images.Frame) ([]roi.Candidate, error)
	Close() error
}

// Config is a configuration for the per-frame analyzer.
type Config struct {
	// SharpnessWeight is the sharpness share of the candidate score.
	SharpnessWeight float64 `json:"sharpness_weight"`
	// Hysteresis is the score margin required to switch primary candidates
	// between frames.
	Hysteresis float64 `json:"hysteresis"`
	// ExpandRatio widens raw detector boxes before statistics are taken.
	// Candidates that arrive already expanded (OriginalRegion set) are
	// left alone.
	ExpandRatio float64 `json:"expand_ratio"`
	// LogEncoded marks the clip as log-encoded material.
	LogEncoded bool `json:"log_encoded"`
}

// DefaultConfig returns the fixed design constants the pipeline ships with.
func DefaultConfig() Config {
	return Config{
		SharpnessWeight: roi.DefaultSharpnessWeight,
		Hysteresis:      roi.DefaultHysteresis,
		ExpandRatio:     1.5,
	}
}

// Analyzer computes one CorrectionParams per frame. It is stateless: the
// only cross-frame state is the SelectionState the caller passes in and
// stores back, so independent clips analyzed concurrently just need
// independent states.
type Analyzer struct {
	Config Config
}

// NewAnalyzer creates an analyzer, filling zero config fields from the
// defaults.
func NewAnalyzer(config Config) *Analyzer {
	d := DefaultConfig()
	if config.SharpnessWeight == 0 {
		config.SharpnessWeight = d.SharpnessWeight
	}
	if config.Hysteresis == 0 {
		config.Hysteresis = d.Hysteresis
	}
	if config.ExpandRatio == 0 {
		config.ExpandRatio = d.ExpandRatio
	}
	return &Analyzer{Config: config}
}

// Analysis is the full per-frame output: the correction, the host CDL
// mapping, and the intermediate decisions for diagnostics.
type Analysis struct {
	Params  grade.CorrectionParams `json:"params"`
	CDL     grade.CDL              `json:"cdl"`
	Scene   scene.Type             `json:"scene,omitempty"`
	Primary *roi.Candidate         `json:"primary,omitempty"`
	Global  stats.RegionStats      `json:"global_stats"`
	Region  *stats.RegionStats     `json:"region_stats,omitempty"`
}

// Analyze runs the detector-signal path for one frame. Candidates may be
// empty; the estimate then degrades to whole-frame statistics
// (method global_only) instead of failing. With candidates present the
// primary is chosen under hysteresis against state, and the returned state
// carries the primary's ID for the next frame.
//
// Given identical frame and candidate input the output is bit-identical
// across invocations.
func (a *Analyzer) Analyze(frame *images.Frame, candidates []roi.Candidate, state roi.SelectionState) (Analysis, roi.SelectionState) {
	globalStats := stats.Compute(frame, nil)

	if len(candidates) == 0 {
		exposure := grade.CombinedExposure(nil, globalStats, false, a.Config.LogEncoded)
		params := grade.Params(exposure, grade.Contrast(globalStats, a.Config.LogEncoded), nil, globalStats)
		return Analysis{
			Params: params,
			CDL:    grade.ToCDL(params),
			Global: globalStats,
		}, state
	}

	scored := roi.ScoreAll(a.expandRaw(candidates, frame), frame, a.Config.SharpnessWeight)
	primary := roi.Select(scored, state.PreviousPrimaryID, a.Config.Hysteresis)
	state.Remember(primary.ID)

	regionStats := stats.Compute(frame, &primary.Region)
	exposure := grade.CombinedExposure(&regionStats, globalStats, true, a.Config.LogEncoded)
	params := grade.Params(exposure, grade.Contrast(globalStats, a.Config.LogEncoded), &regionStats, globalStats)

	return Analysis{
		Params:  params,
		CDL:     grade.ToCDL(params),
		Primary: primary,
		Global:  globalStats,
		Region:  &regionStats,
	}, state
}

// expandRaw widens candidates that still carry a raw detector box. The
// bundled backends expand before returning and mark it by setting
// OriginalRegion; candidates from other FaceDetector implementations are
// widened here, so region statistics always run on the grown box.
func (a *Analyzer) expandRaw(candidates []roi.Candidate, frame *images.Frame) []roi.Candidate {
	raw := false
	for _, c := range candidates {
		if c.OriginalRegion.Empty() {
			raw = true
			break
		}
	}
	if !raw {
		return candidates
	}

	out := make([]roi.Candidate, len(candidates))
	copy(out, candidates)
	for i := range out {
		if !out[i].OriginalRegion.Empty() {
			continue
		}
		out[i].OriginalRegion = out[i].Region
		out[i].Region = out[i].Region.Expand(a.Config.ExpandRatio, frame.Width, frame.Height)
	}
	return out
}

// AnalyzeSceneRule runs the fallback path used when no detector signal
// exists at all: coarse metrics choose a canned profile under the stricter
// scene envelope. When a face signal is available Analyze takes precedence;
// this path never runs alongside it.
func (a *Analyzer) AnalyzeSceneRule(frame *images.Frame) Analysis {
	metrics := scene.ExtractMetrics(frame)
	sceneType := scene.Classify(metrics)
	params := scene.Adjust(sceneType, nil)

	return Analysis{
		Params: params,
		CDL:    grade.ToCDL(params),
		Scene:  sceneType,
		Global: stats.Compute(frame, nil),
	}
}
