// Package main provides a smooth scrolling plugin for macOS. Each gesture
// scrolls the front browser window with a short linear animation.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/ayusman/wavecam/internal/plugin"
	"github.com/ayusman/wavecam/internal/scroll"
)

// stepInterval is coarser than the animation default since every step
// starts an osascript process.
const stepInterval = 50 * time.Millisecond

// Params tunes a scroll action.
type Params struct {
	Distance   float64 `json:"distance"`
	LongFactor float64 `json:"long_factor"`
	DurationMS int     `json:"duration_ms"`
	App        string  `json:"app"`
}

func defaultParams() Params {
	return Params{
		Distance:   400,
		LongFactor: 3,
		DurationMS: int(scroll.DefaultDuration / time.Millisecond),
		App:        "Safari",
	}
}

func main() {
	var req plugin.Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(plugin.Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	if err := handle(req); err != nil {
		writeResponse(plugin.Response{Error: fmt.Sprintf("action %s failed: %v", req.Action, err)})
		return
	}
	writeResponse(plugin.Response{Success: true})
}

func handle(req plugin.Request) error {
	if req.Action != "scroll" {
		return fmt.Errorf("unknown action: %s", req.Action)
	}

	p, err := parseParams(req.Params)
	if err != nil {
		return err
	}
	delta, err := deltaFor(req.Direction, p)
	if err != nil {
		return err
	}

	a := scroll.NewAnimator()
	a.Interval = stepInterval

	var stepErr error
	err = a.By(context.Background(), delta, time.Duration(p.DurationMS)*time.Millisecond, func(step scroll.Point) {
		if stepErr != nil || (step.X == 0 && step.Y == 0) {
			return
		}
		stepErr = runScript(scrollScript(p.App, step))
	})
	if err != nil {
		return err
	}
	return stepErr
}

func parseParams(raw json.RawMessage) (Params, error) {
	p := defaultParams()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &p); err != nil {
			return p, fmt.Errorf("failed to parse params: %w", err)
		}
	}
	if p.Distance <= 0 {
		return p, fmt.Errorf("distance must be positive")
	}
	if p.DurationMS < 0 {
		return p, fmt.Errorf("duration_ms must not be negative")
	}
	return p, nil
}

// deltaFor returns the scroll offset for a direction. A left swipe moves
// the page content left, which scrolls the viewport right.
func deltaFor(direction string, p Params) (scroll.Point, error) {
	switch direction {
	case "up":
		return scroll.Point{Y: -p.Distance}, nil
	case "down":
		return scroll.Point{Y: p.Distance}, nil
	case "uplong":
		return scroll.Point{Y: -p.Distance * p.LongFactor}, nil
	case "downlong":
		return scroll.Point{Y: p.Distance * p.LongFactor}, nil
	case "left":
		return scroll.Point{X: p.Distance}, nil
	case "right":
		return scroll.Point{X: -p.Distance}, nil
	}
	return scroll.Point{}, fmt.Errorf("unsupported direction %q", direction)
}

func scrollScript(app string, step scroll.Point) string {
	js := fmt.Sprintf("window.scrollBy(%.1f, %.1f)", step.X, step.Y)
	return fmt.Sprintf(`tell application %q to do JavaScript %q in front document`, app, js)
}

func writeResponse(resp plugin.Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}

func runScript(script string) error {
	output, err := exec.Command("osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
