// Package color derives display colors for tags.
package color

import "fmt"

// ForTag returns a stable hex color for a tag name. Names that differ only
// in case get the same color.
func ForTag(name string) string {
	h := 0
	for _, c := range name {
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}

	// Muted palette: S=0.45, L=0.6
	r, g, b := hslToRGB(float64(h%360), 0.45, 0.6)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// hslToRGB converts h (0-360), s and l (0-1) to 8-bit RGB.
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	h /= 360.0

	if s == 0 {
		v := uint8(l * 255)
		return v, v, v
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	return uint8(hueToRGB(p, q, h+1.0/3.0) * 255),
		uint8(hueToRGB(p, q, h) * 255),
		uint8(hueToRGB(p, q, h-1.0/3.0) * 255)
}

func hueToRGB(p, q, t float64) float64 {
	switch {
	case t < 0:
		t++
	case t > 1:
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}
