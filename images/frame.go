// Package images - Frame model and pixel-level color math for the grading
// analysis pipeline. A Frame is a decoded, packed RGB buffer with 8 bits per
// channel; everything downstream (statistics, sharpness, scene metrics)
// reads pixels through this type and never touches encoded bytes.
package images

import (
	"image"
	"image/color"
)

// Frame represents a decoded video frame or still with packed RGB data,
// 8 bits per channel, row-major, no padding.
type Frame struct {
	// The raw pixel data, len = Width*Height*3.
	Data []byte `json:"data" yaml:"data"`
	// The width of the frame in pixels.
	Width int `json:"width" yaml:"width"`
	// The height of the frame in pixels.
	Height int `json:"height" yaml:"height"`
}

// NewFrame allocates a zeroed frame of the given dimensions.
func NewFrame(width, height int) *Frame {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Frame{
		Data:   make([]byte, width*height*3),
		Width:  width,
		Height: height,
	}
}

// At returns the RGB triplet at (x, y). Callers are expected to stay in
// bounds; the pipeline always iterates over clipped regions.
func (f *Frame) At(x, y int) (r, g, b uint8) {
	i := (y*f.Width + x) * 3
	return f.Data[i], f.Data[i+1], f.Data[i+2]
}

// Set writes the RGB triplet at (x, y).
func (f *Frame) Set(x, y int, r, g, b uint8) {
	i := (y*f.Width + x) * 3
	f.Data[i] = r
	f.Data[i+1] = g
	f.Data[i+2] = b
}

// Empty reports whether the frame contains no pixels.
func (f *Frame) Empty() bool {
	return f == nil || f.Width <= 0 || f.Height <= 0 || len(f.Data) < f.Width*f.Height*3
}

// SubFrame copies the pixels covered by region into a new Frame. The region
// is clipped to the frame bounds first; a degenerate region yields an empty
// frame rather than an error.
func (f *Frame) SubFrame(region Region) *Frame {
	if f.Empty() {
		return NewFrame(0, 0)
	}
	r := region.Clip(f.Width, f.Height)
	sub := NewFrame(r.W, r.H)
	for y := 0; y < r.H; y++ {
		srcOff := ((r.Y+y)*f.Width + r.X) * 3
		dstOff := y * r.W * 3
		copy(sub.Data[dstOff:dstOff+r.W*3], f.Data[srcOff:srcOff+r.W*3])
	}
	return sub
}

// Gray returns the luminance plane of the frame as float32 values on the
// 0-255 scale, using the same BT.601 weighting OpenCV applies for its
// grayscale conversion. Used by the sharpness measure.
func (f *Frame) Gray() []float32 {
	if f.Empty() {
		return nil
	}
	plane := make([]float32, f.Width*f.Height)
	for i := 0; i < f.Width*f.Height; i++ {
		r := float32(f.Data[i*3])
		g := float32(f.Data[i*3+1])
		b := float32(f.Data[i*3+2])
		plane[i] = 0.299*r + 0.587*g + 0.114*b
	}
	return plane
}

// ToImage converts the frame to an image.RGBA for interop with resamplers
// and encoders from the standard image ecosystem.
func (f *Frame) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			r, g, b := f.At(x, y)
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return img
}

// FromImage converts any image.Image into a packed RGB frame.
func FromImage(img image.Image) *Frame {
	bounds := img.Bounds()
	f := NewFrame(bounds.Dx(), bounds.Dy())
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			f.Set(x, y, uint8(r>>8), uint8(g>>8), uint8(b>>8))
		}
	}
	return f
}
