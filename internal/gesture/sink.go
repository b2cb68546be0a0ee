package gesture

import (
	"log"
	"sync"
)

// Sink receives recognized gestures.
type Sink interface {
	Emit(ev Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ev Event)

// Emit calls f(ev).
func (f SinkFunc) Emit(ev Event) {
	f(ev)
}

// ChannelSink forwards events to a buffered channel without blocking.
// Events that do not fit are dropped.
type ChannelSink struct {
	ch chan Event
}

// NewChannelSink creates a ChannelSink with the given buffer size.
func NewChannelSink(size int) *ChannelSink {
	return &ChannelSink{ch: make(chan Event, size)}
}

// Emit sends ev if there is room in the buffer.
func (s *ChannelSink) Emit(ev Event) {
	select {
	case s.ch <- ev:
	default:
		log.Printf("gesture channel full, dropping %s", ev.Direction)
	}
}

// Events returns the receive side of the channel.
func (s *ChannelSink) Events() <-chan Event {
	return s.ch
}

// Fanout delivers each event to every registered sink in order.
type Fanout struct {
	sinks []Sink
	mu    sync.RWMutex
}

// NewFanout creates a Fanout with the given initial sinks.
func NewFanout(sinks ...Sink) *Fanout {
	f := &Fanout{}
	for _, s := range sinks {
		f.Add(s)
	}
	return f
}

// Add registers another sink. Nil sinks are ignored.
func (f *Fanout) Add(s Sink) {
	if s == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sinks = append(f.sinks, s)
}

// Emit delivers ev to all sinks.
func (f *Fanout) Emit(ev Event) {
	f.mu.RLock()
	sinks := f.sinks
	f.mu.RUnlock()

	for _, s := range sinks {
		s.Emit(ev)
	}
}

// Len returns the number of registered sinks.
func (f *Fanout) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.sinks)
}
