package detector

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	imgs "github.com/cine-ai/go-grade/images"
)

// row builds one model output row: center, size, score.
func row(cx, cy, w, h, score float32) []float32 {
	return []float32{cx, cy, w, h, score}
}

func TestPostprocessFiltersAndMaps(t *testing.T) {
	cfg := DefaultConfig()
	lb := Letterbox{Scale: 1.0} // no letterboxing: input == frame space

	var raw []float32
	raw = append(raw, row(100, 100, 40, 40, 0.9)...)
	raw = append(raw, row(300, 200, 40, 40, 0.1)...) // below min confidence

	candidates := Postprocess(raw, cfg, lb, 640, 640)
	require.Len(t, candidates, 1)
	assert.Equal(t, 0, candidates[0].ID)
	assert.Equal(t, imgs.Region{X: 80, Y: 80, W: 40, H: 40}, candidates[0].Region)
	assert.InDelta(t, 0.9, candidates[0].Confidence, 1e-6)
}

func TestPostprocessNMS(t *testing.T) {
	cfg := DefaultConfig()
	lb := Letterbox{Scale: 1.0}

	var raw []float32
	raw = append(raw, row(100, 100, 40, 40, 0.7)...)
	raw = append(raw, row(102, 102, 40, 40, 0.9)...) // near-duplicate, higher score
	raw = append(raw, row(400, 400, 40, 40, 0.8)...) // far away

	candidates := Postprocess(raw, cfg, lb, 640, 640)
	require.Len(t, candidates, 2, "duplicate box suppressed")

	// Ordered by score: the 0.9 duplicate survivor first, IDs from 0.
	assert.Equal(t, 0, candidates[0].ID)
	assert.InDelta(t, 0.9, candidates[0].Confidence, 1e-6)
	assert.Equal(t, 1, candidates[1].ID)
	assert.InDelta(t, 0.8, candidates[1].Confidence, 1e-6)
}

func TestPostprocessLetterboxMapping(t *testing.T) {
	cfg := DefaultConfig()
	// A 1280x720 frame letterboxed into 640x640: scale 0.5, 140px top pad.
	lb := Letterbox{Scale: 0.5, PadLeft: 0, PadTop: 140}

	var raw []float32
	raw = append(raw, row(320, 320, 64, 64, 0.9)...)

	candidates := Postprocess(raw, cfg, lb, 1280, 720)
	require.Len(t, candidates, 1)
	// (320-32, 320-32) input → ((288-0)/0.5, (288-140)/0.5) = (576, 296).
	assert.Equal(t, imgs.Region{X: 576, Y: 296, W: 128, H: 128}, candidates[0].Region)
}

func TestPostprocessClipsToFrame(t *testing.T) {
	cfg := DefaultConfig()
	lb := Letterbox{Scale: 1.0}

	var raw []float32
	raw = append(raw, row(10, 10, 60, 60, 0.9)...) // spills over the origin

	candidates := Postprocess(raw, cfg, lb, 640, 640)
	require.Len(t, candidates, 1)
	assert.Equal(t, 0, candidates[0].Region.X)
	assert.Equal(t, 0, candidates[0].Region.Y)
}

func TestPostprocessSigmoid(t *testing.T) {
	assert.InDelta(t, 0.5, float64(Sigmoid(0)), 1e-6)
	assert.Greater(t, Sigmoid(4), float32(0.97))
	assert.Less(t, Sigmoid(-4), float32(0.03))

	cfg := DefaultConfig()
	cfg.ScoresAreLogits = true
	lb := Letterbox{Scale: 1.0}

	var raw []float32
	raw = append(raw, row(100, 100, 40, 40, 2.0)...)  // sigmoid ~0.88, kept
	raw = append(raw, row(300, 300, 40, 40, -2.0)...) // sigmoid ~0.12, dropped

	candidates := Postprocess(raw, cfg, lb, 640, 640)
	require.Len(t, candidates, 1)
	assert.Greater(t, candidates[0].Confidence, 0.8)
}

func TestPostprocessEmpty(t *testing.T) {
	assert.Empty(t, Postprocess(nil, DefaultConfig(), Letterbox{Scale: 1}, 640, 640))
	// Trailing partial row is ignored.
	assert.Empty(t, Postprocess([]float32{1, 2, 3}, DefaultConfig(), Letterbox{Scale: 1}, 640, 640))
}

func TestPreprocessGeometry(t *testing.T) {
	frame := imgs.NewFrame(1280, 720)
	packed, lb, err := Preprocess(frame, image.Point{X: 640, Y: 640})
	require.NoError(t, err)

	assert.InDelta(t, 0.5, lb.Scale, 1e-9)
	assert.Equal(t, 0, lb.PadLeft)
	assert.Equal(t, 140, lb.PadTop)
	assert.Equal(t, []int{1, 3, 640, 640}, []int(packed.Shape()))
	assert.True(t, matchesInput(packed, image.Point{X: 640, Y: 640}))
	assert.False(t, matchesInput(packed, image.Point{X: 416, Y: 416}))

	// Round trip through the letterbox.
	x, y := lb.ToFrame(320, 320)
	assert.InDelta(t, 640.0, x, 1e-9)
	assert.InDelta(t, 360.0, y, 1e-9)
}

func TestPreprocessEmptyFrame(t *testing.T) {
	_, _, err := Preprocess(imgs.NewFrame(0, 0), image.Point{X: 640, Y: 640})
	assert.Error(t, err)
}

func TestPreprocessNormalization(t *testing.T) {
	frame := imgs.NewFrame(64, 64)
	for i := range frame.Data {
		frame.Data[i] = 255
	}
	packed, _, err := Preprocess(frame, image.Point{X: 64, Y: 64})
	require.NoError(t, err)

	data := packed.Data().([]float32)
	assert.InDelta(t, 1.0, float64(data[0]), 1e-6)
	assert.InDelta(t, 1.0, float64(data[64*64]), 1e-6, "G plane")
	assert.InDelta(t, 1.0, float64(data[2*64*64]), 1e-6, "B plane")
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{ModelPath: "face.onnx"}.withDefaults()
	assert.Equal(t, float32(0.3), cfg.MinConfidence)
	assert.Equal(t, 1.5, cfg.ExpandRatio)
	assert.Equal(t, image.Point{X: 640, Y: 640}, cfg.InputShape)
	assert.Equal(t, "face.onnx", cfg.ModelPath)
}
