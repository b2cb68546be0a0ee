// Package motion computes per-frame motion statistics by differencing
// consecutive RGBA frames.
package motion

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/wavecam/internal/frame"
)

// MaxColorChange is the largest summed RGB difference the threshold is scaled against.
const MaxColorChange = 256 * 3

// ErrInvalidSensitivity is returned for a sensitivity outside [0, 100].
var ErrInvalidSensitivity = errors.New("sensitivity must be between 0 and 100")

// MotionStat aggregates the changed pixels of one frame comparison.
type MotionStat struct {
	ChangedCount uint32
	SumX         uint64
	SumY         uint64
}

// Movement is the centroid of the changed pixels plus how many changed.
type Movement struct {
	X float64
	Y float64
	D float64
}

// Movement converts the raw sums into a centroid. Callers only receive a
// MotionStat when ChangedCount > 0, so the division is always defined.
func (s MotionStat) Movement() Movement {
	d := float64(s.ChangedCount)
	return Movement{
		X: float64(s.SumX) / d,
		Y: float64(s.SumY) / d,
		D: d,
	}
}

// Threshold returns the summed RGB difference a pixel has to exceed to count
// as changed. Higher sensitivity gives a lower threshold.
func Threshold(sensitivity int) float64 {
	return MaxColorChange * math.Abs(float64(sensitivity-100)/100)
}

// DifferenceEngine compares each frame against the one before it using
// OpenCV frame differencing.
type DifferenceEngine struct {
	prev      gocv.Mat
	visualize bool
	vis       *frame.PixelBuffer
	mu        sync.Mutex
}

// NewDifferenceEngine creates an engine with no stored frame.
// Call Close to release the native memory it holds.
func NewDifferenceEngine() *DifferenceEngine {
	return &DifferenceEngine{
		prev: gocv.NewMat(),
	}
}

// Update compares buf against the previously stored frame and then stores
// buf as the new prior.
//
// It returns nil without error when there is nothing to report: on the first
// frame, after a resolution change, or when no pixel crossed the threshold.
//
// Algorithm:
// 1. Widen the RGBA frame to float so differences do not saturate
// 2. If there is no prior of the same size, store it as baseline
// 3. Absolute difference with the prior, then sum the R, G and B planes
// 4. Binary threshold (strictly greater than the sensitivity threshold)
// 5. Image moments of the mask give the count and the x and y sums
func (e *DifferenceEngine) Update(buf *frame.PixelBuffer, sensitivity int) (*MotionStat, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if sensitivity < 0 || sensitivity > 100 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSensitivity, sensitivity)
	}

	// wraps buf.Data without copying
	rgba, err := gocv.NewMatFromBytes(buf.Height, buf.Width, gocv.MatTypeCV8UC4, buf.Data)
	if err != nil {
		return nil, fmt.Errorf("wrap pixel buffer: %w", err)
	}
	defer rgba.Close()

	cur := gocv.NewMat()
	rgba.ConvertTo(&cur, gocv.MatTypeCV32FC4)

	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.prev
	e.prev = cur
	defer prev.Close()

	if prev.Empty() {
		return nil, nil
	}
	if prev.Cols() != buf.Width || prev.Rows() != buf.Height {
		log.Printf("frame size changed from %dx%d to %dx%d, restarting motion baseline",
			prev.Cols(), prev.Rows(), buf.Width, buf.Height)
		e.vis = nil
		return nil, nil
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(cur, prev, &diff)

	// alpha is a masking channel, not a motion signal
	planes := gocv.Split(diff)
	defer func() {
		for _, p := range planes {
			p.Close()
		}
	}()
	sum := gocv.NewMat()
	defer sum.Close()
	gocv.Add(planes[0], planes[1], &sum)
	gocv.Add(sum, planes[2], &sum)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(sum, &thresh, float32(Threshold(sensitivity)), 255, gocv.ThresholdBinary)

	mask := gocv.NewMat()
	defer mask.Close()
	thresh.ConvertTo(&mask, gocv.MatTypeCV8U)

	if e.visualize {
		e.vis = paintChanged(rgba, mask)
	}

	if gocv.CountNonZero(mask) == 0 {
		return nil, nil
	}

	m := gocv.Moments(mask, true)
	return &MotionStat{
		ChangedCount: uint32(math.Round(m["m00"])),
		SumX:         uint64(math.Round(m["m10"])),
		SumY:         uint64(math.Round(m["m01"])),
	}, nil
}

// paintChanged paints the masked pixels of rgba opaque red.
func paintChanged(rgba, mask gocv.Mat) *frame.PixelBuffer {
	out := rgba.Clone()
	defer out.Close()

	red := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 0, 0, 255), rgba.Rows(), rgba.Cols(), gocv.MatTypeCV8UC4)
	defer red.Close()
	red.CopyToWithMask(&out, mask)

	return &frame.PixelBuffer{Width: out.Cols(), Height: out.Rows(), Data: out.ToBytes()}
}

// SetVisualize turns the changed-pixel visualization on or off.
func (e *DifferenceEngine) SetVisualize(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.visualize = enabled
	if !enabled {
		e.vis = nil
	}
}

// Visualization returns a copy of the latest visualization: changed pixels in
// opaque red over the current frame. Returns nil when visualization is off or
// no comparison has been made yet.
func (e *DifferenceEngine) Visualization() *frame.PixelBuffer {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.vis.Clone()
}

// HasPrior reports whether a frame is stored for the next comparison.
func (e *DifferenceEngine) HasPrior() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return !e.prev.Empty()
}

// Reset drops the stored frame so the next Update starts a new baseline.
func (e *DifferenceEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.release()
}

// Close releases the native memory held by the engine. The engine can still
// be used afterwards and starts from a new baseline.
func (e *DifferenceEngine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.release()
}

func (e *DifferenceEngine) release() {
	if !e.prev.Empty() {
		e.prev.Close()
		e.prev = gocv.NewMat()
	}
	e.vis = nil
}
