package main

import (
	"encoding/json"
	"testing"

	"github.com/ayusman/wavecam/internal/plugin"
	"github.com/ayusman/wavecam/internal/scroll"
)

func TestDeltaFor(t *testing.T) {
	p := defaultParams()

	tests := []struct {
		direction string
		want      scroll.Point
		wantErr   bool
	}{
		{"up", scroll.Point{Y: -400}, false},
		{"down", scroll.Point{Y: 400}, false},
		{"uplong", scroll.Point{Y: -1200}, false},
		{"downlong", scroll.Point{Y: 1200}, false},
		{"left", scroll.Point{X: 400}, false},
		{"right", scroll.Point{X: -400}, false},
		{"", scroll.Point{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.direction, func(t *testing.T) {
			got, err := deltaFor(tt.direction, p)
			if (err != nil) != tt.wantErr {
				t.Fatalf("deltaFor() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("deltaFor() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseParams(t *testing.T) {
	p, err := parseParams(nil)
	if err != nil {
		t.Fatalf("parseParams(nil) error = %v", err)
	}
	if p != defaultParams() {
		t.Errorf("parseParams(nil) = %+v, want defaults", p)
	}
	if p.DurationMS != 600 {
		t.Errorf("default duration = %d, want 600", p.DurationMS)
	}

	p, err = parseParams(json.RawMessage(`{"distance": 100, "app": "Google Chrome"}`))
	if err != nil {
		t.Fatalf("parseParams() error = %v", err)
	}
	if p.Distance != 100 || p.App != "Google Chrome" || p.LongFactor != 3 {
		t.Errorf("parseParams() = %+v", p)
	}

	for _, raw := range []string{`{"distance": 0}`, `{"duration_ms": -1}`, `"nope"`} {
		if _, err := parseParams(json.RawMessage(raw)); err == nil {
			t.Errorf("parseParams(%s) expected error", raw)
		}
	}
}

func TestScrollScript(t *testing.T) {
	got := scrollScript("Safari", scroll.Point{X: 0, Y: 26.5})
	want := `tell application "Safari" to do JavaScript "window.scrollBy(0.0, 26.5)" in front document`
	if got != want {
		t.Errorf("scrollScript() = %q, want %q", got, want)
	}
}

func TestHandle_UnknownAction(t *testing.T) {
	if err := handle(plugin.Request{Action: "zoom", Direction: "up"}); err == nil {
		t.Error("expected error for unknown action")
	}
	if err := handle(plugin.Request{Action: "scroll", Direction: "sideways"}); err == nil {
		t.Error("expected error for unknown direction")
	}
}
