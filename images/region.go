// Package images - Region is the rectangular pixel area everything in the
// pipeline agrees on: detector outputs, statistics windows, and sharpness
// patches are all Regions clipped to frame bounds.
package images

import "image"

// Region represents a rectangular sub-area of a frame in pixel coordinates.
// W and H are never negative after Clip.
type Region struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Clip constrains the region to a frame of the given dimensions. The result
// always satisfies 0 <= X, 0 <= Y, W >= 0, H >= 0 and X+W <= width,
// Y+H <= height.
func (r Region) Clip(width, height int) Region {
	if r.X < 0 {
		r.W += r.X
		r.X = 0
	}
	if r.Y < 0 {
		r.H += r.Y
		r.Y = 0
	}
	if r.X > width {
		r.X = width
	}
	if r.Y > height {
		r.Y = height
	}
	if r.X+r.W > width {
		r.W = width - r.X
	}
	if r.Y+r.H > height {
		r.H = height - r.Y
	}
	if r.W < 0 {
		r.W = 0
	}
	if r.H < 0 {
		r.H = 0
	}
	return r
}

// Empty reports whether the region covers zero pixels.
func (r Region) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Area returns the number of pixels covered by the region.
func (r Region) Area() int {
	if r.Empty() {
		return 0
	}
	return r.W * r.H
}

// Expand grows the region about its center by ratio and clips the result to
// the frame. Used to widen a face box so skin area around the detection
// contributes to the exposure statistics.
func (r Region) Expand(ratio float64, width, height int) Region {
	if ratio <= 0 || r.Empty() {
		return r.Clip(width, height)
	}
	cx := r.X + r.W/2
	cy := r.Y + r.H/2
	newW := int(float64(r.W) * ratio)
	newH := int(float64(r.H) * ratio)
	out := Region{
		X: cx - newW/2,
		Y: cy - newH/2,
		W: newW,
		H: newH,
	}
	return out.Clip(width, height)
}

// ToRect converts the region to an image.Rectangle.
func (r Region) ToRect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H).Canon()
}

// FromRect converts an image.Rectangle to a Region.
func FromRect(rect image.Rectangle) Region {
	rect = rect.Canon()
	return Region{X: rect.Min.X, Y: rect.Min.Y, W: rect.Dx(), H: rect.Dy()}
}

// IoU returns the intersection-over-union of two regions, 0 when they are
// disjoint or either is empty.
func (r Region) IoU(other Region) float64 {
	inter := FromRect(r.ToRect().Intersect(other.ToRect())).Area()
	union := r.Area() + other.Area() - inter
	if union <= 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
