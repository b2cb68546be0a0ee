// Package capture provides camera capture functionality using GoCV (OpenCV).
package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/wavecam/internal/frame"
)

// Default camera settings
const (
	DefaultFPS         = 25
	DefaultWidth       = 320
	DefaultHeight      = 240
	DefaultCompression = 2
)

// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
var ErrCameraNotOpen = errors.New("camera is not open")

// Camera defines the interface for camera capture implementations.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*frame.PixelBuffer, error)
	SetFPS(fps int)
	FPS() int
	SetCompression(rate int)
	Compression() int
	IsOpen() bool
}

// cameraImpl manages video capture from a camera device using GoCV.
type cameraImpl struct {
	deviceID    int
	compression int
	capture     *gocv.VideoCapture
	mat         gocv.Mat
	mu          sync.Mutex
	running     bool
	fps         int
}

// NewCamera creates a new Camera with the given device ID.
// Frames are shrunk by the compression rate before they are returned;
// rates below 1 are treated as 1.
func NewCamera(deviceID, compression int) Camera {
	if compression < 1 {
		compression = 1
	}
	return &cameraImpl{
		deviceID:    deviceID,
		compression: compression,
		fps:         DefaultFPS,
	}
}

// Open opens the camera for capturing frames.
func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.deviceID)
	if err != nil {
		return err
	}

	capture.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
	capture.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)
	capture.Set(gocv.VideoCaptureFPS, float64(c.fps))

	c.capture = capture
	c.mat = gocv.NewMat()
	c.running = true

	return nil
}

// Close closes the camera and releases resources.
func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.mat.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame grabs the next frame and returns it as a compressed RGBA buffer.
func (c *cameraImpl) ReadFrame() (*frame.PixelBuffer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	if ok := c.capture.Read(&c.mat); !ok {
		return nil, errors.New("failed to read frame from camera")
	}
	if c.mat.Empty() {
		return nil, errors.New("captured frame is empty")
	}

	return MatToPixelBuffer(c.mat, c.compression)
}

// SetFPS sets the frames per second for capture.
// Values less than or equal to 0 are ignored.
func (c *cameraImpl) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps

	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the current frames per second setting.
func (c *cameraImpl) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fps
}

// SetCompression changes the downscale factor for subsequent frames.
// Values less than 1 are ignored.
func (c *cameraImpl) SetCompression(rate int) {
	if rate < 1 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.compression = rate
}

// Compression returns the current downscale factor.
func (c *cameraImpl) Compression() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.compression
}

// IsOpen returns true if the camera is currently open and running.
func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}
