package driver

import (
	"time"

	"github.com/boba-engine/boba/internal/core/event"
	"github.com/boba-engine/boba/internal/core/pearl"
	coresys "github.com/boba-engine/boba/internal/core/system"
)

// InputSystem delivers the input buffered during the previous frame. Bus
// handlers installed by the Driver turn each input into a world event.
type InputSystem struct {
	bus *event.Bus
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}

// UpdateSystem raises the per-frame Update event.
type UpdateSystem struct {
	world *pearl.World
}

func (s *UpdateSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *UpdateSystem) Update(dt time.Duration) {
	pearl.Trigger(s.world, event.Update{Delta: dt})
}

// RenderSystem raises Render and then lets the renderer read the world.
type RenderSystem struct {
	world    *pearl.World
	renderer Renderer
	frame    *uint64
}

func (s *RenderSystem) Phase() coresys.Phase { return coresys.PhaseRender }

func (s *RenderSystem) Update(_ time.Duration) {
	pearl.Trigger(s.world, event.Render{Frame: *s.frame})
	if s.renderer != nil {
		s.renderer.Render(s.world, *s.frame)
	}
}

// CleanupSystem applies commands queued outside of dispatch, for example by
// the renderer or by host code between frames.
type CleanupSystem struct {
	world *pearl.World
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.world.Flush()
}
