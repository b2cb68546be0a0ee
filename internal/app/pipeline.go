package app

import (
	"log"
	"time"

	"github.com/ayusman/wavecam/internal/gesture"
)

// frameInterval converts a frame rate to a ticker period.
func frameInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = 1
	}
	return time.Second / time.Duration(fps)
}

// runPipeline is the main loop. It reads one frame per tick, follows frame
// rate changes and closes done when stop is closed.
func (a *App) runPipeline(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	fps := a.Settings().FrameRate
	ticker := time.NewTicker(frameInterval(fps))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if rate := a.Settings().FrameRate; rate != fps {
				fps = rate
				ticker.Reset(frameInterval(fps))
				log.Printf("Frame rate changed to %d", fps)
			}

			if !a.IsEnabled() {
				continue
			}

			if _, err := a.step(); err != nil {
				log.Printf("Error processing frame: %v", err)
			}
		}
	}
}

// step reads one frame, runs it through the processor and emits any
// recognized gestures to the sinks.
func (a *App) step() ([]gesture.Event, error) {
	buf, err := a.camera.ReadFrame()
	if err != nil {
		return nil, err
	}

	events, err := a.processor.ProcessFrame(buf, a.frameOptions())
	if err != nil {
		return nil, err
	}

	if a.config.Debug {
		if vis := a.processor.Engine().Visualization(); vis != nil {
			buf = vis
		}
	}
	a.setLatest(buf)

	for _, ev := range events {
		log.Printf("Gesture recognized: %s", ev.Direction)
		a.sinks.Emit(ev)
	}

	return events, nil
}
