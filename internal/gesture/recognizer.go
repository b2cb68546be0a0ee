// Package gesture turns per-frame motion statistics into discrete
// directional gesture events.
package gesture

import (
	"errors"
	"math"
	"sync"

	"github.com/ayusman/wavecam/internal/motion"
)

// Direction is the direction of a recognized gesture.
type Direction string

const (
	DirectionLeft     Direction = "left"
	DirectionRight    Direction = "right"
	DirectionUp       Direction = "up"
	DirectionDown     Direction = "down"
	DirectionUpLong   Direction = "uplong"
	DirectionDownLong Direction = "downlong"
)

// Directions lists every direction the recognizer can emit.
var Directions = []Direction{
	DirectionLeft,
	DirectionRight,
	DirectionUp,
	DirectionDown,
	DirectionUpLong,
	DirectionDownLong,
}

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	for _, known := range Directions {
		if d == known {
			return true
		}
	}
	return false
}

// Event is a recognized gesture.
type Event struct {
	Direction Direction `json:"direction"`
}

// State is the recognizer's position within a motion episode.
type State int

const (
	// StateIdle waits for motion to rise above the baseline.
	StateIdle State = iota
	// StateArmed holds the first movement and waits for the second.
	StateArmed
	// StateSuppressing ignores motion until it falls back below the baseline.
	StateSuppressing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateSuppressing:
		return "suppressing"
	default:
		return "unknown"
	}
}

// Config holds the recognizer's tuning parameters.
type Config struct {
	// FilteringFactor weights history in the baseline average (0.9 = slow moving).
	FilteringFactor float64
	// MinTotalChange is how far the changed-pixel count must rise above the
	// baseline to start a gesture.
	MinTotalChange float64
	// MinDirChange is the minimum centroid shift, in pixels, to assert a direction.
	MinDirChange float64
	// LongDirChange is the vertical centroid shift above which up/down become long.
	LongDirChange float64
}

// DefaultConfig returns the standard tuning.
func DefaultConfig() Config {
	return Config{
		FilteringFactor: 0.9,
		MinTotalChange:  200,
		MinDirChange:    2,
		LongDirChange:   7,
	}
}

// Validate checks that the parameters are usable.
func (c Config) Validate() error {
	if c.FilteringFactor < 0 || c.FilteringFactor >= 1 {
		return errors.New("filtering factor must be in [0, 1)")
	}
	if c.MinTotalChange <= 0 {
		return errors.New("min total change must be positive")
	}
	if c.MinDirChange <= 0 {
		return errors.New("min direction change must be positive")
	}
	if c.LongDirChange < c.MinDirChange {
		return errors.New("long direction change must be at least min direction change")
	}
	return nil
}

// Recognizer is a three-state machine that reports at most one gesture per
// motion episode. An episode starts when the changed-pixel count jumps above
// its smoothed baseline, the direction is decided from the next sample, and
// the episode ends once the count drops back under the baseline.
type Recognizer struct {
	config        Config
	state         State
	filteredTotal float64
	prior         motion.Movement
	mu            sync.Mutex
}

// NewRecognizer creates a Recognizer in the idle state.
func NewRecognizer(config Config) *Recognizer {
	return &Recognizer{config: config}
}

// Search feeds one frame's movement into the state machine and returns the
// recognized gesture, if any.
func (r *Recognizer) Search(m motion.Movement) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.config
	r.filteredTotal = c.FilteringFactor*r.filteredTotal + (1-c.FilteringFactor)*m.D
	significant := m.D-r.filteredTotal > c.MinTotalChange

	switch r.state {
	case StateIdle:
		if significant {
			r.prior = m
			r.state = StateArmed
		}

	case StateArmed:
		r.state = StateSuppressing
		return r.classify(m)

	case StateSuppressing:
		if !significant {
			r.state = StateIdle
		}
	}

	return Event{}, false
}

// classify decides the direction from the centroid shift between the stored
// movement and m. Image x grows to the camera's right, which is the user's
// left, so a negative dx is a swipe to the right.
//
// The horizontal and vertical checks are separate groups, each gated on the
// dominant axis, so at most one of them can fire.
func (r *Recognizer) classify(m motion.Movement) (Event, bool) {
	c := r.config
	dx := m.X - r.prior.X
	dy := m.Y - r.prior.Y
	horizontal := math.Abs(dy) < math.Abs(dx)

	var dir Direction
	if dx < -c.MinDirChange && horizontal {
		dir = DirectionRight
	} else if dx > c.MinDirChange && horizontal {
		dir = DirectionLeft
	}

	if dy > c.MinDirChange && !horizontal {
		dir = DirectionDown
		if math.Abs(dy) > c.LongDirChange {
			dir = DirectionDownLong
		}
	} else if dy < -c.MinDirChange && !horizontal {
		dir = DirectionUp
		if math.Abs(dy) > c.LongDirChange {
			dir = DirectionUpLong
		}
	}

	if dir == "" {
		return Event{}, false
	}
	return Event{Direction: dir}, true
}

// State returns the current state.
func (r *Recognizer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// FilteredTotal returns the current baseline.
func (r *Recognizer) FilteredTotal() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filteredTotal
}

// Reset returns the recognizer to idle with an empty baseline.
func (r *Recognizer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = StateIdle
	r.filteredTotal = 0
	r.prior = motion.Movement{}
}
