// Package scroll animates a scroll position toward a destination over a fixed
// duration with linear interpolation.
package scroll

import (
	"context"
	"time"
)

// DefaultDuration is used when Animate is given a non-positive duration.
const DefaultDuration = 600 * time.Millisecond

// FrameInterval is the pause between animation steps (about 60 per second).
const FrameInterval = 16 * time.Millisecond

// Point is a scroll offset in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Interpolate returns the point a fraction progress of the way from from to to.
// Progress is clamped to [0, 1].
func Interpolate(from, to Point, progress float64) Point {
	switch {
	case progress <= 0:
		return from
	case progress >= 1:
		return to
	}
	return Point{
		X: from.X*(1-progress) + to.X*progress,
		Y: from.Y*(1-progress) + to.Y*progress,
	}
}

// Animator drives a progress value from 0 to 1 over a duration. Clock and
// Sleep are replaceable for tests.
type Animator struct {
	Interval time.Duration
	Now      func() time.Time
	Sleep    func(ctx context.Context, d time.Duration) error
}

// NewAnimator returns an Animator using the wall clock.
func NewAnimator() *Animator {
	return &Animator{
		Interval: FrameInterval,
		Now:      time.Now,
		Sleep:    sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run calls fn with increasing progress values. The last call is always
// fn(1) unless ctx is cancelled first, in which case ctx.Err() is returned.
func (a *Animator) Run(ctx context.Context, duration time.Duration, fn func(progress float64)) error {
	if duration <= 0 {
		duration = DefaultDuration
	}

	start := a.Now()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		progress := float64(a.Now().Sub(start)) / float64(duration)
		if progress >= 1 {
			fn(1)
			return nil
		}
		fn(progress)

		if err := a.Sleep(ctx, a.Interval); err != nil {
			return err
		}
	}
}

// To moves from from to to, calling step with each absolute position.
func (a *Animator) To(ctx context.Context, from, to Point, duration time.Duration, step func(Point)) error {
	return a.Run(ctx, duration, func(p float64) {
		step(Interpolate(from, to, p))
	})
}

// By moves by delta, calling step with the increment since the previous
// step. The increments sum to delta.
func (a *Animator) By(ctx context.Context, delta Point, duration time.Duration, step func(Point)) error {
	var last Point
	return a.Run(ctx, duration, func(p float64) {
		cur := Interpolate(Point{}, delta, p)
		step(cur.Sub(last))
		last = cur
	})
}

// Animate moves from from to to over duration using the wall clock.
func Animate(ctx context.Context, from, to Point, duration time.Duration, step func(Point)) error {
	return NewAnimator().To(ctx, from, to, duration, step)
}
