package detector

import (
	"image"
	"image/draw"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/cine-ai/go-grade/images"
)

// Letterbox records how a frame was fitted into the model input so box
// coordinates can be mapped back to frame space.
type Letterbox struct {
	// Scale is the uniform factor the frame was resized by.
	Scale float64
	// PadLeft and PadTop are the letterbox margins in input pixels.
	PadLeft int
	PadTop  int
}

// ToFrame maps a point from model-input coordinates back to frame
// coordinates.
func (l Letterbox) ToFrame(x, y float64) (float64, float64) {
	if l.Scale == 0 {
		return x, y
	}
	return (x - float64(l.PadLeft)) / l.Scale, (y - float64(l.PadTop)) / l.Scale
}

// Preprocess letterboxes a frame into the model input shape and packs it as
// a normalized NCHW float32 tensor (1, 3, H, W), values in [0,1].
//
// Arguments:
// - frame: The decoded frame to preprocess.
// - inputShape: The model's input dimensions.
//
// Returns:
// - *tensor.Dense: The packed input tensor.
// - Letterbox: The geometry needed to map boxes back to frame space.
// - error: Error when the frame is empty.
func Preprocess(frame *images.Frame, inputShape image.Point) (*tensor.Dense, Letterbox, error) {
	canvas, lb, err := LetterboxCanvas(frame, inputShape)
	if err != nil {
		return nil, Letterbox{}, err
	}

	inW, inH := inputShape.X, inputShape.Y
	data := make([]float32, 3*inH*inW)
	plane := inH * inW
	for y := 0; y < inH; y++ {
		for x := 0; x < inW; x++ {
			c := canvas.RGBAAt(x, y)
			idx := y*inW + x
			data[idx] = float32(c.R) / 255.0
			data[plane+idx] = float32(c.G) / 255.0
			data[2*plane+idx] = float32(c.B) / 255.0
		}
	}

	t := tensor.New(
		tensor.WithShape(1, 3, inH, inW),
		tensor.Of(tensor.Float32),
		tensor.WithBacking(data),
	)
	return t, lb, nil
}

// matchesInput reports whether a packed tensor carries the NCHW shape the
// model's input tensor expects.
func matchesInput(t *tensor.Dense, inputShape image.Point) bool {
	return t.Shape().Eq(tensor.Shape{1, 3, inputShape.Y, inputShape.X})
}

// LetterboxCanvas resizes a frame into the model input shape with
// aspect-preserving letterboxing and returns the padded canvas plus the
// geometry needed to map detections back.
func LetterboxCanvas(frame *images.Frame, inputShape image.Point) (*image.RGBA, Letterbox, error) {
	if frame.Empty() {
		return nil, Letterbox{}, errors.New("cannot preprocess an empty frame")
	}

	inW, inH := inputShape.X, inputShape.Y
	scaleX := float64(inW) / float64(frame.Width)
	scaleY := float64(inH) / float64(frame.Height)
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}
	newW := int(float64(frame.Width) * scale)
	newH := int(float64(frame.Height) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	lb := Letterbox{
		Scale:   scale,
		PadLeft: (inW - newW) / 2,
		PadTop:  (inH - newH) / 2,
	}

	resized := resize.Resize(uint(newW), uint(newH), frame.ToImage(), resize.Lanczos3)
	canvas := image.NewRGBA(image.Rect(0, 0, inW, inH))
	draw.Draw(canvas,
		image.Rect(lb.PadLeft, lb.PadTop, lb.PadLeft+newW, lb.PadTop+newH),
		resized, image.Point{}, draw.Src)
	return canvas, lb, nil
}
