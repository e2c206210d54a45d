package event

import "time"

// Frame events raised by the driver.

type Update struct {
	Delta time.Duration
}

type Render struct {
	Frame uint64
}

// Input events raised by the platform layer.

type KeyboardInput struct {
	Key     string
	Pressed bool
}

type MouseMotion struct {
	X, Y   float64
	DX, DY float64
}

type WindowResize struct {
	Width, Height int
}

type WindowClose struct{}

// ExitRequested is a resource. Its presence in the world's bag tells the
// driver to stop after the current frame.
type ExitRequested struct {
	Reason string
}
