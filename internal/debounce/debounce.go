// Package debounce collapses bursts of calls into one.
package debounce

import (
	"sync"
	"time"
)

// DefaultCooldown is used when New is given a non-positive cooldown.
const DefaultCooldown = 100 * time.Millisecond

// Debouncer runs the first call of a burst immediately and drops the rest.
// A burst ends once no call has arrived for the cooldown; every dropped call
// restarts the cooldown.
type Debouncer struct {
	cooldown time.Duration

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// New returns a leading-edge Debouncer.
func New(cooldown time.Duration) *Debouncer {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Debouncer{cooldown: cooldown}
}

// Cooldown returns the quiet period that ends a burst.
func (d *Debouncer) Cooldown() time.Duration {
	return d.cooldown
}

// Do runs fn synchronously if no burst is in progress and reports whether it ran.
func (d *Debouncer) Do(fn func()) bool {
	d.mu.Lock()
	busy := d.timer != nil
	if busy {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.cooldown, func() { d.expire(gen) })
	d.mu.Unlock()

	if busy {
		return false
	}

	fn()
	return true
}

// expire ends the burst unless a later call restarted the cooldown.
func (d *Debouncer) expire(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen == d.gen {
		d.timer = nil
	}
}

// Active reports whether a burst is in progress.
func (d *Debouncer) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Reset ends any burst so the next call runs.
func (d *Debouncer) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Group keeps one Debouncer per key.
type Group struct {
	cooldown time.Duration

	mu   sync.Mutex
	keys map[string]*Debouncer
}

// NewGroup returns a Group whose debouncers share cooldown.
func NewGroup(cooldown time.Duration) *Group {
	return &Group{cooldown: cooldown, keys: make(map[string]*Debouncer)}
}

// Do debounces fn under key.
func (g *Group) Do(key string, fn func()) bool {
	g.mu.Lock()
	d, ok := g.keys[key]
	if !ok {
		d = New(g.cooldown)
		g.keys[key] = d
	}
	g.mu.Unlock()
	return d.Do(fn)
}

// Reset ends every burst.
func (g *Group) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, d := range g.keys {
		d.Reset()
	}
}
