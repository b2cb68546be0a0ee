package capture

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ayusman/wavecam/internal/frame"
)

// MatToPixelBuffer converts a BGR (or grayscale) Mat into an RGBA PixelBuffer,
// shrinking it by the given compression rate first. A rate of 1 or less keeps
// the original size.
func MatToPixelBuffer(mat gocv.Mat, compression int) (*frame.PixelBuffer, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("%w: empty frame", frame.ErrInvalidBuffer)
	}

	src := mat
	if compression > 1 {
		w := mat.Cols() / compression
		h := mat.Rows() / compression
		if w == 0 || h == 0 {
			return nil, fmt.Errorf("%w: %dx%d too small for compression %d", frame.ErrInvalidBuffer, mat.Cols(), mat.Rows(), compression)
		}
		resized := gocv.NewMat()
		defer resized.Close()
		gocv.Resize(mat, &resized, image.Point{X: w, Y: h}, 0, 0, gocv.InterpolationArea)
		src = resized
	}

	rgba := gocv.NewMat()
	defer rgba.Close()

	switch src.Channels() {
	case 1:
		gocv.CvtColor(src, &rgba, gocv.ColorGrayToBGRA)
	case 4:
		gocv.CvtColor(src, &rgba, gocv.ColorBGRAToRGBA)
	default:
		gocv.CvtColor(src, &rgba, gocv.ColorBGRToRGBA)
	}

	// ToBytes copies, so the buffer outlives the Mat
	return frame.New(rgba.Cols(), rgba.Rows(), rgba.ToBytes())
}

// PixelBufferToMat converts an RGBA PixelBuffer into a BGR Mat.
// The caller is responsible for closing the returned Mat.
func PixelBufferToMat(buf *frame.PixelBuffer) (gocv.Mat, error) {
	if err := buf.Validate(); err != nil {
		return gocv.NewMat(), err
	}

	rgba, err := gocv.NewMatFromBytes(buf.Height, buf.Width, gocv.MatTypeCV8UC4, buf.Data)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("wrap pixel buffer: %w", err)
	}
	defer rgba.Close()

	bgr := gocv.NewMat()
	gocv.CvtColor(rgba, &bgr, gocv.ColorRGBAToBGR)
	return bgr, nil
}

// EncodeJPEG encodes a PixelBuffer as JPEG.
func EncodeJPEG(buf *frame.PixelBuffer) ([]byte, error) {
	mat, err := PixelBufferToMat(buf)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	encoded, err := gocv.IMEncode(gocv.JPEGFileExt, mat)
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer encoded.Close()

	// GetBytes aliases native memory freed by Close
	data := make([]byte, encoded.Len())
	copy(data, encoded.GetBytes())
	return data, nil
}
