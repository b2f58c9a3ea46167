package grade

import (
	"math"

	"github.com/cine-ai/go-grade/images"
)

// Apply renders a CDL onto a frame: out = (in*slope + offset)^power per
// channel on normalized values, clamped to the 8-bit range. This is a
// preview of what the host's correction primitive will do, used to verify
// a candidate correction against the accident rules before it is applied
// for real. The host remains the authority on the final render.
func Apply(frame *images.Frame, cdl CDL) *images.Frame {
	if frame.Empty() {
		return images.NewFrame(0, 0)
	}

	// Per-channel transfer is identical for all pixels, so precompute the
	// 256-entry lookup once per frame.
	var lut [256]uint8
	for v := 0; v < 256; v++ {
		x := float64(v)/255.0*cdl.Slope + cdl.Offset
		if x < 0 {
			x = 0
		}
		x = math.Pow(x, cdl.Power)
		out := math.Round(x * 255.0)
		if out > 255 {
			out = 255
		}
		if out < 0 {
			out = 0
		}
		lut[v] = uint8(out)
	}

	corrected := images.NewFrame(frame.Width, frame.Height)
	for i, v := range frame.Data[:frame.Width*frame.Height*3] {
		corrected.Data[i] = lut[v]
	}
	return corrected
}
