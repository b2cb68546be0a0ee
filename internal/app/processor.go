package app

import (
	"sync"

	"github.com/ayusman/wavecam/internal/frame"
	"github.com/ayusman/wavecam/internal/gesture"
	"github.com/ayusman/wavecam/internal/motion"
	"github.com/ayusman/wavecam/internal/skin"
)

// FrameOptions are the per-frame settings supplied by the host.
type FrameOptions struct {
	Sensitivity int
	SkinFilter  bool
}

// DefaultFrameOptions returns sensitivity 82 with the skin filter off.
func DefaultFrameOptions() FrameOptions {
	return FrameOptions{Sensitivity: 82}
}

// Processor runs one video source through the skin filter, the difference
// engine and the recognizer. Frames are processed one at a time; concurrent
// callers are serialized.
type Processor struct {
	engine     *motion.DifferenceEngine
	recognizer *gesture.Recognizer
	skinRange  skin.Range
	// skinFilter is the filter state of the frame stored in the engine.
	skinFilter bool
	mu         sync.Mutex
}

// NewProcessor creates a Processor with its own engine and recognizer.
func NewProcessor(config gesture.Config) *Processor {
	return &Processor{
		engine:     motion.NewDifferenceEngine(),
		recognizer: gesture.NewRecognizer(config),
		skinRange:  skin.DefaultRange(),
	}
}

// ProcessFrame runs buf through the pipeline and returns the recognized
// gestures, which is zero or one event in practice.
func (p *Processor) ProcessFrame(buf *frame.PixelBuffer, opts FrameOptions) ([]gesture.Event, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// a filtered frame never compares cleanly against an unfiltered one
	if opts.SkinFilter != p.skinFilter {
		p.engine.Reset()
		p.skinFilter = opts.SkinFilter
	}

	if opts.SkinFilter {
		filtered, err := p.skinRange.Apply(buf)
		if err != nil {
			return nil, err
		}
		buf = filtered
	}

	stat, err := p.engine.Update(buf, opts.Sensitivity)
	if err != nil {
		return nil, err
	}
	if stat == nil {
		return nil, nil
	}

	ev, ok := p.recognizer.Search(stat.Movement())
	if !ok {
		return nil, nil
	}
	return []gesture.Event{ev}, nil
}

// Engine returns the processor's difference engine.
func (p *Processor) Engine() *motion.DifferenceEngine {
	return p.engine
}

// Recognizer returns the processor's recognizer.
func (p *Processor) Recognizer() *gesture.Recognizer {
	return p.recognizer
}

// Reset clears both the stored frame and the recognizer state.
func (p *Processor) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.engine.Reset()
	p.recognizer.Reset()
}

// Close releases the engine's native memory.
func (p *Processor) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.engine.Close()
}
