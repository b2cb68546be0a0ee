package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ayusman/wavecam/internal/debounce"
	"github.com/ayusman/wavecam/internal/gesture"
	"github.com/ayusman/wavecam/internal/plugin"
	"github.com/ayusman/wavecam/internal/store"
)

// ErrUnbound is returned by Dispatch when no enabled binding exists for a direction.
var ErrUnbound = errors.New("no binding for direction")

// BindingSource looks up the binding for a direction. It returns nil, nil
// when the direction is unbound.
type BindingSource interface {
	GetByDirection(direction string) (*store.Binding, error)
}

// Dispatcher turns recognized gestures into plugin runs. It is a
// gesture.Sink; Emit never blocks on the plugin.
type Dispatcher struct {
	bindings BindingSource
	plugins  *plugin.Manager
	exec     *plugin.Executor
	debounce *debounce.Group

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. Repeats of one direction inside
// cooldown are dropped.
func NewDispatcher(bindings BindingSource, plugins *plugin.Manager, exec *plugin.Executor, cooldown time.Duration) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		bindings: bindings,
		plugins:  plugins,
		exec:     exec,
		debounce: debounce.NewGroup(cooldown),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Emit runs the action bound to ev.Direction in the background.
func (d *Dispatcher) Emit(ev gesture.Event) {
	if d.ctx.Err() != nil {
		return
	}

	fired := d.debounce.Do(string(ev.Direction), func() {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			err := d.Dispatch(d.ctx, ev)
			switch {
			case errors.Is(err, ErrUnbound):
			case err != nil:
				log.Printf("Action for %s failed: %v", ev.Direction, err)
			}
		}()
	})
	if !fired {
		log.Printf("Debounced repeated gesture: %s", ev.Direction)
	}
}

// Dispatch runs the action bound to ev.Direction and waits for it.
func (d *Dispatcher) Dispatch(ctx context.Context, ev gesture.Event) error {
	binding, err := d.bindings.GetByDirection(string(ev.Direction))
	if err != nil {
		return fmt.Errorf("look up binding: %w", err)
	}
	if binding == nil || !binding.Enabled {
		return fmt.Errorf("%w: %s", ErrUnbound, ev.Direction)
	}

	p, err := d.plugins.Get(binding.PluginName)
	if err != nil {
		return fmt.Errorf("binding %s: %w: %s", binding.ID, err, binding.PluginName)
	}

	req := &plugin.Request{
		Action:    binding.ActionName,
		Direction: string(ev.Direction),
		Params:    binding.Config,
	}

	resp, err := d.exec.Execute(ctx, p, req)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("plugin %s reported failure: %s", p.Manifest.Name, resp.Error)
	}

	log.Printf("Action executed: %s -> %s/%s", ev.Direction, binding.PluginName, binding.ActionName)
	return nil
}

// Reset forgets the cooldowns so the next gesture of every direction runs.
func (d *Dispatcher) Reset() {
	d.debounce.Reset()
}

// Wait blocks until every background run has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close cancels running actions, waits for them and drops later events.
func (d *Dispatcher) Close() {
	d.cancel()
	d.wg.Wait()
}
