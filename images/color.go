package images

// Luma709 returns the Rec.709 luminance of an RGB triplet on the 0-255
// scale: Y = 0.2126*R + 0.7152*G + 0.0722*B. The scene metrics use this
// weighting; the region statistics use the HSV value channel instead.
func Luma709(r, g, b uint8) float64 {
	return 0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)
}

// ValueHSV returns the HSV value channel, max(R, G, B), normalized to [0,1].
func ValueHSV(r, g, b uint8) float64 {
	return float64(maxRGB(r, g, b)) / 255.0
}

// SaturationHSV returns the HSV saturation, (max-min)/max, in [0,1].
// Achromatic pixels (including black) yield exactly 0.
func SaturationHSV(r, g, b uint8) float64 {
	maxC := maxRGB(r, g, b)
	if maxC == 0 {
		return 0
	}
	minC := minRGB(r, g, b)
	return float64(maxC-minC) / float64(maxC)
}

// SaturationHSL returns the HSL saturation in [0,1]. Achromatic pixels
// yield exactly 0.
func SaturationHSL(r, g, b uint8) float64 {
	maxC := float64(maxRGB(r, g, b)) / 255.0
	minC := float64(minRGB(r, g, b)) / 255.0
	if maxC == minC {
		return 0
	}
	l := (maxC + minC) / 2.0
	if l <= 0.5 {
		return (maxC - minC) / (maxC + minC)
	}
	return (maxC - minC) / (2.0 - maxC - minC)
}

func maxRGB(r, g, b uint8) uint8 {
	m := r
	if g > m {
		m = g
	}
	if b > m {
		m = b
	}
	return m
}

func minRGB(r, g, b uint8) uint8 {
	m := r
	if g < m {
		m = g
	}
	if b < m {
		m = b
	}
	return m
}
