// Package driver runs the frame loop around a World without a window: it
// feeds buffered and scripted input, raises Update and Render each frame, and
// stops when the world asks to exit.
package driver

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/boba-engine/boba/internal/core/event"
	"github.com/boba-engine/boba/internal/core/pearl"
	"github.com/boba-engine/boba/internal/core/resource"
	coresys "github.com/boba-engine/boba/internal/core/system"
	"github.com/boba-engine/boba/internal/data"
)

// Renderer reads the world once per frame, after the Render event. It must
// not mutate pearls directly.
type Renderer interface {
	Render(w *pearl.World, frame uint64)
}

type Options struct {
	TickRate  time.Duration
	MaxFrames uint64           // 0 = no limit
	Clock     func() time.Time // phase timing; nil = time.Now
}

type Driver struct {
	world  *pearl.World
	bus    *event.Bus
	runner *coresys.Runner
	script *data.Scenario
	opts   Options
	log    *zap.Logger
	frame  uint64

	timings  coresys.Timings
	overruns uint64
}

func New(w *pearl.World, r Renderer, opts Options, log *zap.Logger) *Driver {
	if opts.TickRate <= 0 {
		opts.TickRate = 16 * time.Millisecond
	}
	if log == nil {
		log = zap.NewNop()
	}
	d := &Driver{
		world:  w,
		bus:    event.NewBus(),
		runner: coresys.NewRunner(opts.Clock),
		opts:   opts,
		log:    log,
	}

	forward[event.KeyboardInput](d.bus, w, nil)
	forward[event.MouseMotion](d.bus, w, nil)
	forward(d.bus, w, func(e event.WindowResize) {
		log.Debug("window resized", zap.Int("width", e.Width), zap.Int("height", e.Height))
	})
	forward(d.bus, w, func(event.WindowClose) {
		log.Info("window close requested")
	})

	d.runner.Register(&InputSystem{bus: d.bus})
	d.runner.Register(&UpdateSystem{world: w})
	d.runner.Register(&RenderSystem{world: w, renderer: r, frame: &d.frame})
	d.runner.Register(&CleanupSystem{world: w})
	return d
}

// forward subscribes a bus handler that raises the input as a world event.
// note, if set, runs first.
func forward[T any](b *event.Bus, w *pearl.World, note func(T)) {
	event.Subscribe(b, func(e T) {
		if note != nil {
			note(e)
		}
		pearl.Trigger(w, e)
	})
}

// Bus returns the input mailbox. Emitting into it is safe from any goroutine.
func (d *Driver) Bus() *event.Bus { return d.bus }

// SetScript attaches scripted input, emitted on the frames it names.
func (d *Driver) SetScript(s *data.Scenario) { d.script = s }

func (d *Driver) Frame() uint64 { return d.frame }

// Timings returns the phase times of the last frame.
func (d *Driver) Timings() coresys.Timings { return d.timings }

// Overruns returns the number of frames whose phases took longer than the
// tick rate.
func (d *Driver) Overruns() uint64 { return d.overruns }

// Step runs one frame and reports whether the loop should stop.
func (d *Driver) Step(dt time.Duration) bool {
	d.frame++
	d.emitScript()
	d.timings = d.runner.Tick(dt)
	if total := d.timings.Total(); total > d.opts.TickRate {
		d.overruns++
		d.log.Debug("frame overran tick",
			zap.Uint64("frame", d.frame),
			zap.Duration("took", total),
			zap.Duration("update", d.timings.Phase(coresys.PhaseUpdate)),
			zap.Duration("render", d.timings.Phase(coresys.PhaseRender)),
		)
	}

	if exit, ok := resource.Get[event.ExitRequested](d.world.Resources()); ok {
		d.log.Info("exit requested", zap.String("reason", exit.Reason), zap.Uint64("frame", d.frame))
		return true
	}
	if d.opts.MaxFrames > 0 && d.frame >= d.opts.MaxFrames {
		d.log.Info("frame limit reached", zap.Uint64("frame", d.frame))
		return true
	}
	return false
}

// Run ticks frames until the world requests exit, the frame limit is hit or
// ctx is cancelled.
func (d *Driver) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.opts.TickRate)
	defer ticker.Stop()

	d.log.Info("frame loop started", zap.Duration("tick", d.opts.TickRate))
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			d.log.Info("frame loop cancelled", zap.Uint64("frame", d.frame))
			return nil
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			if d.Step(dt) {
				return nil
			}
		}
	}
}

func (d *Driver) emitScript() {
	if d.script == nil {
		return
	}
	for _, in := range d.script.InputsAt(d.frame) {
		switch {
		case in.Key != "":
			event.Emit(d.bus, event.KeyboardInput{Key: in.Key, Pressed: !in.Release})
		case in.Resize != nil:
			event.Emit(d.bus, event.WindowResize{Width: in.Resize.Width, Height: in.Resize.Height})
		case in.Motion != nil:
			event.Emit(d.bus, event.MouseMotion{X: in.Motion.X, Y: in.Motion.Y, DX: in.Motion.DX, DY: in.Motion.DY})
		case in.Close:
			event.Emit(d.bus, event.WindowClose{})
		}
	}
}
