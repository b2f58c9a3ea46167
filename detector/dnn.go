package detector

import (
	"image"
	"os"
	"sync"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/cine-ai/go-grade/images"
	"github.com/cine-ai/go-grade/roi"
)

// DNNDetector runs the face model through OpenCV's DNN module
// (gocv.ReadNet). Functionally equivalent to ORTDetector; useful where an
// OpenCV build is available but the ONNX Runtime shared library is not.
type DNNDetector struct {
	cfg Config
	mu  sync.Mutex
	net gocv.Net
}

// NewDNNDetector creates an OpenCV DNN backed face detector.
func NewDNNDetector(config Config) (*DNNDetector, error) {
	cfg := config.withDefaults()
	if cfg.ModelPath == "" {
		return nil, errors.New("detector model path is required")
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, errors.Wrapf(err, "model file not found: %s", cfg.ModelPath)
	}

	net := gocv.ReadNet(cfg.ModelPath, "")
	if net.Empty() {
		return nil, errors.Errorf("failed to load model: %s", cfg.ModelPath)
	}
	net.SetPreferableBackend(gocv.NetBackendOpenCV)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &DNNDetector{cfg: cfg, net: net}, nil
}

// Detect runs one frame through the network and returns expanded
// candidates in frame coordinates.
func (d *DNNDetector) Detect(frame *images.Frame) ([]roi.Candidate, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	canvas, lb, err := LetterboxCanvas(frame, d.cfg.InputShape)
	if err != nil {
		return nil, err
	}

	mat, err := rgbaToMat(canvas)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	// The canvas is already model-sized, so the blob step only normalizes
	// and reorders to NCHW. The canvas is RGB; keep the channel order.
	blob := gocv.BlobFromImage(mat, 1.0/255.0,
		image.Pt(d.cfg.InputShape.X, d.cfg.InputShape.Y),
		gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	d.net.SetInput(blob, d.cfg.InputName)
	prob := d.net.Forward(d.cfg.OutputName)
	defer prob.Close()

	raw, err := prob.DataPtrFloat32()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read network output")
	}
	out := make([]float32, len(raw))
	copy(out, raw)

	candidates := Postprocess(out, d.cfg, lb, frame.Width, frame.Height)
	return roi.ExpandAll(candidates, d.cfg.ExpandRatio, frame.Width, frame.Height), nil
}

// Close releases the network.
func (d *DNNDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}

// rgbaToMat converts a packed RGBA canvas into a 3-channel Mat.
func rgbaToMat(img *image.RGBA) (gocv.Mat, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	data := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.RGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
			i := (y*w + x) * 3
			data[i] = c.R
			data[i+1] = c.G
			data[i+2] = c.B
		}
	}
	return gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC3, data)
}
