// Package skin masks out pixels whose color falls outside typical skin-tone
// ranges in HSV space.
package skin

import (
	"github.com/ayusman/wavecam/internal/frame"
)

// Band is an open interval (Min, Max).
type Band struct {
	Min float64
	Max float64
}

// Contains reports whether Min < v < Max.
func (b Band) Contains(v float64) bool {
	return v > b.Min && v < b.Max
}

// Range describes the HSV values accepted as skin.
// A pixel matches when its hue falls in any of the Hue bands and its
// saturation and value fall in their bands.
type Range struct {
	Hue        []Band
	Saturation Band
	Value      Band
}

// DefaultRange returns the skin range used by default. The second hue band
// catches reddish-purple tones seen when the hand is close to the camera.
func DefaultRange() Range {
	return Range{
		Hue: []Band{
			{Min: 0.0, Max: 0.1},
			{Min: 0.59, Max: 1.0},
		},
		Saturation: Band{Min: 0.3, Max: 1.0},
		Value:      Band{Min: 0.4, Max: 1.0},
	}
}

// Contains reports whether an HSV triple is skin colored.
func (r Range) Contains(h, s, v float64) bool {
	if !r.Saturation.Contains(s) || !r.Value.Contains(v) {
		return false
	}
	for _, band := range r.Hue {
		if band.Contains(h) {
			return true
		}
	}
	return false
}

// RGBToHSV converts 8-bit RGB to HSV with all components in [0,1].
// Hue is 0 for achromatic colors.
func RGBToHSV(r, g, b uint8) (h, s, v float64) {
	rf := float64(r) / 255
	gf := float64(g) / 255
	bf := float64(b) / 255

	maxC := max(rf, gf, bf)
	minC := min(rf, gf, bf)
	d := maxC - minC

	v = maxC
	if maxC != 0 {
		s = d / maxC
	}

	if d == 0 {
		return 0, s, v
	}

	switch maxC {
	case rf:
		h = (gf - bf) / d
		if gf < bf {
			h += 6
		}
	case gf:
		h = (bf-rf)/d + 2
	default:
		h = (rf-gf)/d + 4
	}
	h /= 6

	return h, s, v
}

// IsSkin reports whether an RGB color is within the default skin range.
func IsSkin(r, g, b uint8) bool {
	h, s, v := RGBToHSV(r, g, b)
	return DefaultRange().Contains(h, s, v)
}

// Apply filters buf with the default range.
func Apply(buf *frame.PixelBuffer) (*frame.PixelBuffer, error) {
	return DefaultRange().Apply(buf)
}

// Apply returns a copy of buf where every non-skin pixel is replaced with
// transparent white (255, 255, 255, 0). Skin pixels are copied unchanged.
// The input buffer is not modified.
func (r Range) Apply(buf *frame.PixelBuffer) (*frame.PixelBuffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	out := buf.Clone()
	data := out.Data
	for i := 0; i < len(data); i += frame.BytesPerPixel {
		h, s, v := RGBToHSV(data[i], data[i+1], data[i+2])
		if r.Contains(h, s, v) {
			continue
		}
		data[i] = 255
		data[i+1] = 255
		data[i+2] = 255
		data[i+3] = 0
	}

	return out, nil
}
