// Package detector - Face detection backends behind a single interface.
//
// The analysis core treats the detector as an opaque collaborator: it hands
// in a frame and receives candidates with stable per-call IDs, already
// filtered to the minimum confidence. Everything model-specific (tensor
// layout, letterboxing, output decoding) stays inside this package.
package detector

import "image"

// Config for a face detector backend.
type Config struct {
	// ModelPath is the ONNX model file.
	ModelPath string `json:"model_path"`
	// InputShape is the model's expected input size.
	InputShape image.Point `json:"input_shape"`
	// MinConfidence filters detections before they reach the core. The
	// default is deliberately low; log-encoded material is flat and
	// detectors score it conservatively.
	MinConfidence float32 `json:"min_confidence"`
	// NMSThreshold is the IoU above which overlapping boxes are suppressed.
	NMSThreshold float32 `json:"nms_threshold"`
	// ExpandRatio widens each face box about its center so surrounding
	// skin contributes to the exposure statistics.
	ExpandRatio float64 `json:"expand_ratio"`
	// ScoresAreLogits applies a sigmoid to raw output scores.
	ScoresAreLogits bool `json:"scores_are_logits"`
	// InputName and OutputName are the model's tensor names.
	InputName  string `json:"input_name"`
	OutputName string `json:"output_name"`
	// OutputRows is the number of candidate rows the model emits.
	OutputRows int `json:"output_rows"`
}

// DefaultConfig returns the detector defaults used by the pipeline.
func DefaultConfig() Config {
	return Config{
		InputShape:    image.Point{X: 640, Y: 640},
		MinConfidence: 0.3,
		NMSThreshold:  0.45,
		ExpandRatio:   1.5,
		InputName:     "input",
		OutputName:    "output",
		OutputRows:    8400,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.InputShape.X == 0 || c.InputShape.Y == 0 {
		c.InputShape = d.InputShape
	}
	if c.MinConfidence == 0 {
		c.MinConfidence = d.MinConfidence
	}
	if c.NMSThreshold == 0 {
		c.NMSThreshold = d.NMSThreshold
	}
	if c.ExpandRatio == 0 {
		c.ExpandRatio = d.ExpandRatio
	}
	if c.InputName == "" {
		c.InputName = d.InputName
	}
	if c.OutputName == "" {
		c.OutputName = d.OutputName
	}
	if c.OutputRows == 0 {
		c.OutputRows = d.OutputRows
	}
	return c
}
