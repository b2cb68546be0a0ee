// Package app provides the main application logic for the Wavecam gesture system.
package app

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ayusman/wavecam/internal/capture"
	"github.com/ayusman/wavecam/internal/frame"
	"github.com/ayusman/wavecam/internal/gesture"
	"github.com/ayusman/wavecam/internal/plugin"
	"github.com/ayusman/wavecam/internal/store"
)

// ErrClosed is returned by Start after Close.
var ErrClosed = errors.New("app is closed")

// DefaultCooldown is how long repeats of the same direction are ignored by
// the action dispatcher.
const DefaultCooldown = 500 * time.Millisecond

// Config holds configuration options for the application.
type Config struct {
	Store     *store.Store
	PluginDir string
	CameraID  int
	// Camera replaces the device camera when set.
	Camera   capture.Camera
	Gesture  gesture.Config
	Cooldown time.Duration
	// Debug streams the motion visualization instead of the camera frame.
	Debug bool
}

// App is the main application that runs frames through the gesture
// processor and fans recognized gestures out to its sinks.
type App struct {
	config     Config
	camera     capture.Camera
	processor  *Processor
	sinks      *gesture.Fanout
	pluginMgr  *plugin.Manager
	pluginExec *plugin.Executor
	dispatcher *Dispatcher

	settings store.Settings
	enabled  bool
	mu       sync.RWMutex

	latest  *frame.PixelBuffer
	frameMu sync.RWMutex

	stopCh chan struct{}
	doneCh chan struct{}
	closed bool
}

// New creates a new App instance with the given configuration. Settings
// start at store.DefaultSettings until LoadSettings is called.
func New(config Config) *App {
	if config.Gesture == (gesture.Config{}) {
		config.Gesture = gesture.DefaultConfig()
	}
	if err := config.Gesture.Validate(); err != nil {
		log.Printf("Invalid gesture config (%v), using defaults", err)
		config.Gesture = gesture.DefaultConfig()
	}
	if config.Cooldown <= 0 {
		config.Cooldown = DefaultCooldown
	}

	settings := store.DefaultSettings()

	cam := config.Camera
	if cam == nil {
		cam = capture.NewCamera(config.CameraID, settings.CompressionRate)
	}

	a := &App{
		config:     config,
		camera:     cam,
		processor:  NewProcessor(config.Gesture),
		sinks:      gesture.NewFanout(),
		pluginMgr:  plugin.NewManager(config.PluginDir),
		pluginExec: plugin.NewExecutor(plugin.DefaultTimeout),
		settings:   settings,
		enabled:    true,
	}
	a.processor.Engine().SetVisualize(config.Debug)

	if config.Store != nil {
		a.dispatcher = NewDispatcher(config.Store.Bindings(), a.pluginMgr, a.pluginExec, config.Cooldown)
		a.sinks.Add(a.dispatcher)
	}

	return a
}

// LoadSettings reads the persisted settings and applies them.
func (a *App) LoadSettings() error {
	if a.config.Store == nil {
		return nil
	}

	settings, err := a.config.Store.Settings().Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		log.Printf("Stored settings are invalid (%v), using defaults", err)
		settings = store.DefaultSettings()
	}

	a.apply(settings)
	log.Printf("Loaded settings: sensitivity=%d skin_filter=%t frame_rate=%d compression=%d",
		settings.Sensitivity, settings.SkinFilter, settings.FrameRate, settings.CompressionRate)
	return nil
}

// Settings returns the settings currently in effect.
func (a *App) Settings() store.Settings {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.settings
}

// UpdateSettings validates, persists and applies new settings. They take
// effect from the next frame.
func (a *App) UpdateSettings(settings store.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if a.config.Store != nil {
		if err := a.config.Store.Settings().Save(settings); err != nil {
			return err
		}
	}

	a.apply(settings)
	return nil
}

// SetSkinFilter toggles the skin filter and persists the change.
func (a *App) SetSkinFilter(enabled bool) error {
	settings := a.Settings()
	settings.SkinFilter = enabled
	return a.UpdateSettings(settings)
}

func (a *App) apply(settings store.Settings) {
	a.mu.Lock()
	a.settings = settings
	a.mu.Unlock()

	a.camera.SetFPS(settings.FrameRate)
	a.camera.SetCompression(settings.CompressionRate)
}

// frameOptions returns the per-frame options derived from the settings.
func (a *App) frameOptions() FrameOptions {
	s := a.Settings()
	return FrameOptions{Sensitivity: s.Sensitivity, SkinFilter: s.SkinFilter}
}

// SetEnabled enables or disables gesture detection. Disabling also forgets
// the stored frame so that re-enabling does not compare against a stale one.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	changed := a.enabled != enabled
	a.enabled = enabled
	a.mu.Unlock()

	if changed && !enabled {
		a.processor.Reset()
		if a.dispatcher != nil {
			a.dispatcher.Reset()
		}
	}
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// AddSink registers another receiver for recognized gestures.
func (a *App) AddSink(s gesture.Sink) {
	a.sinks.Add(s)
}

// DiscoverPlugins scans the plugin directory and loads available plugins.
func (a *App) DiscoverPlugins() error {
	return a.pluginMgr.Discover()
}

// LatestFrame returns a copy of the most recent frame, or the motion
// visualization in debug mode. It returns nil before the first frame.
func (a *App) LatestFrame() *frame.PixelBuffer {
	a.frameMu.RLock()
	defer a.frameMu.RUnlock()
	return a.latest.Clone()
}

func (a *App) setLatest(buf *frame.PixelBuffer) {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()
	a.latest = buf
}

// Start opens the camera and begins the frame loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	a.camera.SetFPS(a.settings.FrameRate)

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh)

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the frame loop, releases the camera and waits for running
// actions to finish. The app can be started again.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stopCh == nil {
		return
	}

	close(stopCh)
	<-doneCh

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	if a.dispatcher != nil {
		a.dispatcher.Wait()
	}

	log.Println("Detection pipeline stopped")
}

// Close stops the app for good: running actions are cancelled and the
// processor's native memory is released. Start returns ErrClosed afterwards.
func (a *App) Close() {
	a.Stop()

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.mu.Unlock()

	if a.dispatcher != nil {
		a.dispatcher.Close()
	}
	a.processor.Close()
}

// Running reports whether the frame loop is active.
func (a *App) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stopCh != nil
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Processor returns the gesture processor.
func (a *App) Processor() *Processor {
	return a.processor
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// Dispatcher returns the action dispatcher, or nil without a store.
func (a *App) Dispatcher() *Dispatcher {
	return a.dispatcher
}
