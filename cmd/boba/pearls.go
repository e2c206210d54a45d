package main

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/boba-engine/boba/internal/core/event"
	"github.com/boba-engine/boba/internal/core/pearl"
	"github.com/boba-engine/boba/internal/core/resource"
	"github.com/boba-engine/boba/internal/data"
)

// Spinner rotates at Speed radians per second.
type Spinner struct {
	Angle float64
	Speed float64
}

func (Spinner) Register(r *pearl.Registrar[Spinner]) {
	pearl.Listen[event.Update](r, func(p *Spinner, e event.Update, _ *pearl.View) {
		p.Angle = math.Mod(p.Angle+p.Speed*e.Delta.Seconds(), 2*math.Pi)
	})
}

// Watchdog requests exit after a number of frames, or when the window closes.
type Watchdog struct {
	FramesLeft int
}

func (Watchdog) Register(r *pearl.Registrar[Watchdog]) {
	pearl.Listen[event.Update](r, func(p *Watchdog, _ event.Update, v *pearl.View) {
		if p.FramesLeft <= 0 {
			return
		}
		if p.FramesLeft--; p.FramesLeft == 0 {
			resource.Insert(v.Resources(), event.ExitRequested{Reason: "watchdog expired"})
		}
	})
	pearl.Listen[event.WindowClose](r, func(_ *Watchdog, _ event.WindowClose, v *pearl.View) {
		resource.Insert(v.Resources(), event.ExitRequested{Reason: "window closed"})
	})
}

// KeyLogger logs key presses. "n" spawns a spinner, "x" retires the oldest
// one and "q" quits.
type KeyLogger struct {
	Name    string
	Presses int
}

func (KeyLogger) Register(r *pearl.Registrar[KeyLogger]) {
	pearl.Listen[event.KeyboardInput](r, func(p *KeyLogger, e event.KeyboardInput, v *pearl.View) {
		if !e.Pressed {
			return
		}
		p.Presses++
		if log, ok := resource.Get[*zap.Logger](v.Resources()); ok {
			log.Debug("key", zap.String("logger", p.Name), zap.String("key", e.Key), zap.Int("presses", p.Presses))
		}
		switch e.Key {
		case "n":
			pearl.QueueInsert(v, Spinner{Speed: 1})
		case "x":
			if hs := pearl.Handles[Spinner](v); len(hs) > 0 {
				pearl.QueueDestroy(v, hs[0])
			}
		case "q":
			resource.Insert(v.Resources(), event.ExitRequested{Reason: "quit key"})
		}
	})
}

// Cursor tracks the pointer, clamped to the window.
type Cursor struct {
	X, Y          float64
	Width, Height int
}

func (Cursor) Register(r *pearl.Registrar[Cursor]) {
	pearl.Listen[event.MouseMotion](r, func(p *Cursor, e event.MouseMotion, _ *pearl.View) {
		p.X, p.Y = e.X, e.Y
		p.clamp()
	})
	pearl.Listen[event.WindowResize](r, func(p *Cursor, e event.WindowResize, _ *pearl.View) {
		p.Width, p.Height = e.Width, e.Height
		p.clamp()
	})
}

func (p *Cursor) clamp() {
	if p.Width > 0 {
		p.X = math.Max(0, math.Min(p.X, float64(p.Width-1)))
	}
	if p.Height > 0 {
		p.Y = math.Max(0, math.Min(p.Y, float64(p.Height-1)))
	}
}

// spawn inserts the scenario's startup pearls and returns how many.
func spawn(w *pearl.World, s *data.Scenario) (int, error) {
	n := 0
	for _, sp := range s.Spawns {
		for i := 0; i < sp.Count; i++ {
			switch sp.Kind {
			case "spinner":
				pearl.Insert(w, Spinner{Speed: sp.Speed})
			case "watchdog":
				pearl.Insert(w, Watchdog{FramesLeft: sp.Frames})
			case "keylogger":
				pearl.Insert(w, KeyLogger{Name: sp.Name})
			case "cursor":
				pearl.Insert(w, Cursor{})
			default:
				return n, fmt.Errorf("unknown pearl kind %q", sp.Kind)
			}
			n++
		}
	}
	return n, nil
}
