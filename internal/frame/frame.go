// Package frame provides the RGBA pixel buffer passed between the capture
// layer and the motion pipeline.
package frame

import (
	"errors"
	"fmt"
)

// BytesPerPixel is the number of bytes per RGBA sample.
const BytesPerPixel = 4

// ErrInvalidBuffer is returned when a buffer's data length does not match its dimensions.
var ErrInvalidBuffer = errors.New("invalid pixel buffer")

// PixelBuffer is a width x height grid of RGBA samples in row-major order.
type PixelBuffer struct {
	Width  int
	Height int
	Data   []byte
}

// New wraps data as a PixelBuffer after checking that it holds exactly
// width*height RGBA samples.
func New(width, height int, data []byte) (*PixelBuffer, error) {
	b := &PixelBuffer{Width: width, Height: height, Data: data}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Blank returns a zeroed (transparent black) buffer of the given size.
func Blank(width, height int) *PixelBuffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &PixelBuffer{
		Width:  width,
		Height: height,
		Data:   make([]byte, width*height*BytesPerPixel),
	}
}

// Validate reports whether the buffer is well formed.
func (b *PixelBuffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidBuffer)
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidBuffer, b.Width, b.Height)
	}
	if want := b.Width * b.Height * BytesPerPixel; len(b.Data) != want {
		return fmt.Errorf("%w: %dx%d needs %d bytes, got %d", ErrInvalidBuffer, b.Width, b.Height, want, len(b.Data))
	}
	return nil
}

// Stride returns the number of bytes per row.
func (b *PixelBuffer) Stride() int {
	return b.Width * BytesPerPixel
}

// Offset returns the index of the red sample of pixel (x, y).
func (b *PixelBuffer) Offset(x, y int) int {
	return y*b.Stride() + x*BytesPerPixel
}

// Pixels returns the number of pixels in the buffer.
func (b *PixelBuffer) Pixels() int {
	return b.Width * b.Height
}

// SameSize reports whether two buffers have identical dimensions.
func (b *PixelBuffer) SameSize(other *PixelBuffer) bool {
	return other != nil && b.Width == other.Width && b.Height == other.Height
}

// Clone returns a deep copy of the buffer.
func (b *PixelBuffer) Clone() *PixelBuffer {
	if b == nil {
		return nil
	}
	data := make([]byte, len(b.Data))
	copy(data, b.Data)
	return &PixelBuffer{Width: b.Width, Height: b.Height, Data: data}
}
