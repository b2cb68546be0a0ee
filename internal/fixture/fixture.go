// Package fixture builds synthetic frames for tests.
package fixture

import (
	"image/color"

	"github.com/ayusman/wavecam/internal/frame"
)

// Default test frame size, matching a 320x240 capture at compression rate 2.
const (
	Width  = 160
	Height = 120
)

// Colors used by the fixtures.
var (
	Background = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	Hand       = color.RGBA{R: 200, G: 120, B: 90, A: 255}
)

// Solid returns a frame filled with c.
func Solid(width, height int, c color.RGBA) *frame.PixelBuffer {
	buf := frame.Blank(width, height)
	for i := 0; i < len(buf.Data); i += frame.BytesPerPixel {
		buf.Data[i] = c.R
		buf.Data[i+1] = c.G
		buf.Data[i+2] = c.B
		buf.Data[i+3] = c.A
	}
	return buf
}

// Block returns a copy of base with the rectangle at (x, y) of size w x h
// painted with c. The rectangle is clipped to the frame.
func Block(base *frame.PixelBuffer, x, y, w, h int, c color.RGBA) *frame.PixelBuffer {
	buf := base.Clone()
	for row := max(y, 0); row < min(y+h, buf.Height); row++ {
		for col := max(x, 0); col < min(x+w, buf.Width); col++ {
			off := buf.Offset(col, row)
			buf.Data[off] = c.R
			buf.Data[off+1] = c.G
			buf.Data[off+2] = c.B
			buf.Data[off+3] = c.A
		}
	}
	return buf
}

// HandAt returns a background frame with a square "hand" of the given size at (x, y).
func HandAt(x, y, size int) *frame.PixelBuffer {
	return Block(Solid(Width, Height, Background), x, y, size, size, Hand)
}

// Swipe returns a sequence of frames for a hand sweeping from (x0, y0) to
// (x1, y1) in steps moves, preceded by quiet background frames.
func Swipe(quiet int, x0, y0, x1, y1, size, steps int) []*frame.PixelBuffer {
	frames := make([]*frame.PixelBuffer, 0, quiet+steps+1)
	for i := 0; i < quiet; i++ {
		frames = append(frames, Solid(Width, Height, Background))
	}
	for i := 0; i <= steps; i++ {
		x := x0 + (x1-x0)*i/steps
		y := y0 + (y1-y0)*i/steps
		frames = append(frames, HandAt(x, y, size))
	}
	return frames
}
