package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ayusman/wavecam/internal/capture"
	"github.com/ayusman/wavecam/internal/frame"
)

// DefaultStreamInterval paces the MJPEG stream at about 15 frames per second.
const DefaultStreamInterval = 66 * time.Millisecond

// FrameSource provides the frame most recently processed by the pipeline.
type FrameSource interface {
	LatestFrame() *frame.PixelBuffer
}

// StreamHandler serves the latest processed frames as MJPEG.
type StreamHandler struct {
	source   FrameSource
	encode   func(*frame.PixelBuffer) ([]byte, error)
	interval time.Duration
}

// NewStreamHandler creates a StreamHandler that JPEG-encodes frames from source.
func NewStreamHandler(source FrameSource) *StreamHandler {
	return &StreamHandler{
		source:   source,
		encode:   capture.EncodeJPEG,
		interval: DefaultStreamInterval,
	}
}

// ServeHTTP streams MJPEG frames until the client disconnects.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		if buf := h.source.LatestFrame(); buf != nil {
			jpeg, err := h.encode(buf)
			if err == nil {
				fmt.Fprintf(w, "--frame\r\n")
				fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
				fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(jpeg))
				if _, err := w.Write(jpeg); err != nil {
					return
				}
				fmt.Fprintf(w, "\r\n")

				if f, ok := w.(http.Flusher); ok {
					f.Flush()
				}
			}
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
