package detector

import (
	"os"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/cine-ai/go-grade/images"
	"github.com/cine-ai/go-grade/roi"
)

var ortInitOnce sync.Once
var ortInitErr error

// sharedLibPath resolves the ONNX Runtime shared library. The environment
// variable wins; otherwise the platform default name is used and left to
// the loader's search path.
func sharedLibPath() string {
	if p := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"); p != "" {
		return p
	}
	switch runtime.GOOS {
	case "darwin":
		return "libonnxruntime.dylib"
	case "windows":
		return "onnxruntime.dll"
	default:
		return "libonnxruntime.so"
	}
}

func initORT() error {
	ortInitOnce.Do(func() {
		ort.SetSharedLibraryPath(sharedLibPath())
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

// ORTDetector runs a face model through ONNX Runtime. The session and its
// pre-allocated tensors are reused across frames, so a detector instance
// must not be shared between goroutines without the internal lock.
type ORTDetector struct {
	cfg     Config
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

// NewORTDetector creates an ONNX Runtime backed face detector.
//
// Arguments:
// - config: Detector configuration; zero fields take defaults.
//
// Returns:
// - *ORTDetector: The ready detector.
// - error: Error when the model or runtime cannot be loaded.
func NewORTDetector(config Config) (*ORTDetector, error) {
	cfg := config.withDefaults()
	if cfg.ModelPath == "" {
		return nil, errors.New("detector model path is required")
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, errors.Wrapf(err, "model file not found: %s", cfg.ModelPath)
	}
	if err := initORT(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize ONNX Runtime environment")
	}

	inputShape := ort.NewShape(1, 3, int64(cfg.InputShape.Y), int64(cfg.InputShape.X))
	input, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create input tensor")
	}

	outputShape := ort.NewShape(1, int64(cfg.OutputRows), rowStride)
	output, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		input.Destroy()
		return nil, errors.Wrap(err, "failed to create output tensor")
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, errors.Wrap(err, "failed to create session options")
	}
	defer options.Destroy()
	options.SetIntraOpNumThreads(4)
	options.SetInterOpNumThreads(2)
	options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended)

	session, err := ort.NewAdvancedSession(
		cfg.ModelPath,
		[]string{cfg.InputName},
		[]string{cfg.OutputName},
		[]ort.ArbitraryTensor{input},
		[]ort.ArbitraryTensor{output},
		options,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, errors.Wrap(err, "failed to create ORT session")
	}

	return &ORTDetector{
		cfg:     cfg,
		session: session,
		input:   input,
		output:  output,
	}, nil
}

// Detect runs one frame through the model and returns expanded candidates
// in frame coordinates, filtered to the minimum confidence, with IDs
// starting at 0.
func (d *ORTDetector) Detect(frame *images.Frame) ([]roi.Candidate, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	packed, lb, err := Preprocess(frame, d.cfg.InputShape)
	if err != nil {
		return nil, err
	}
	// The session input was allocated for the configured shape; a mismatch
	// here would silently feed the model truncated or misaligned pixels.
	if !matchesInput(packed, d.cfg.InputShape) {
		return nil, errors.Errorf("preprocessed tensor shape %v does not fit model input %dx%d",
			packed.Shape(), d.cfg.InputShape.X, d.cfg.InputShape.Y)
	}
	copy(d.input.GetData(), packed.Data().([]float32))

	if err := d.session.Run(); err != nil {
		return nil, errors.Wrap(err, "inference failed")
	}

	candidates := Postprocess(d.output.GetData(), d.cfg, lb, frame.Width, frame.Height)
	return roi.ExpandAll(candidates, d.cfg.ExpandRatio, frame.Width, frame.Height), nil
}

// Close releases the session and its tensors.
func (d *ORTDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session != nil {
		d.session.Destroy()
		d.session = nil
	}
	if d.input != nil {
		d.input.Destroy()
		d.input = nil
	}
	if d.output != nil {
		d.output.Destroy()
		d.output = nil
	}
	return nil
}
