package main

import (
	"go.uber.org/zap"

	"github.com/boba-engine/boba/internal/core/pearl"
)

// statsRenderer stands in for a GPU renderer: it reads the world at frame
// time and logs a summary every few frames.
type statsRenderer struct {
	log   *zap.Logger
	every uint64
}

func newStatsRenderer(log *zap.Logger, every uint64) *statsRenderer {
	return &statsRenderer{log: log, every: every}
}

func (r *statsRenderer) Render(w *pearl.World, frame uint64) {
	if r.every == 0 || frame%r.every != 0 {
		return
	}
	spinners := pearl.Slice[Spinner](w)
	var sum float64
	for _, s := range spinners {
		sum += s.Angle
	}
	mean := 0.0
	if len(spinners) > 0 {
		mean = sum / float64(len(spinners))
	}
	d := w.Diagnostics()
	r.log.Info("frame",
		zap.Uint64("frame", frame),
		zap.Int("spinners", len(spinners)),
		zap.Float64("mean_angle", mean),
		zap.Int("cursors", pearl.Count[Cursor](w)),
		zap.Uint64("applied", d.Applied),
		zap.Uint64("saturations", d.Saturations),
	)
}
