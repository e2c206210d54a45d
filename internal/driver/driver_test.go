package driver

import (
	"context"
	"testing"
	"time"

	"github.com/boba-engine/boba/internal/core/event"
	"github.com/boba-engine/boba/internal/core/pearl"
	"github.com/boba-engine/boba/internal/core/resource"
	"github.com/boba-engine/boba/internal/data"
)

type frameLog struct {
	updates []time.Duration
	renders []uint64
	keys    []string
	resizes int
}

func logOf(v *pearl.View) *frameLog {
	l, ok := resource.GetMut[frameLog](v.Resources())
	if !ok {
		resource.Insert(v.Resources(), frameLog{})
		l, _ = resource.GetMut[frameLog](v.Resources())
	}
	return l
}

type watcher struct{}

func (watcher) Register(r *pearl.Registrar[watcher]) {
	pearl.Listen[event.Update](r, func(_ *watcher, e event.Update, v *pearl.View) {
		l := logOf(v)
		l.updates = append(l.updates, e.Delta)
	})
	pearl.Listen[event.Render](r, func(_ *watcher, e event.Render, v *pearl.View) {
		l := logOf(v)
		l.renders = append(l.renders, e.Frame)
	})
	pearl.Listen[event.KeyboardInput](r, func(_ *watcher, e event.KeyboardInput, v *pearl.View) {
		l := logOf(v)
		l.keys = append(l.keys, e.Key)
		if e.Key == "q" && e.Pressed {
			resource.Insert(v.Resources(), event.ExitRequested{Reason: "quit key"})
		}
	})
	pearl.Listen[event.WindowResize](r, func(_ *watcher, _ event.WindowResize, v *pearl.View) {
		logOf(v).resizes++
	})
	pearl.Listen[event.WindowClose](r, func(_ *watcher, _ event.WindowClose, v *pearl.View) {
		resource.Insert(v.Resources(), event.ExitRequested{Reason: "window closed"})
	})
}

type spawned struct{}

func (spawned) Register(*pearl.Registrar[spawned]) {}

type recordingRenderer struct {
	frames []uint64
	counts []int
}

func (r *recordingRenderer) Render(w *pearl.World, frame uint64) {
	r.frames = append(r.frames, frame)
	r.counts = append(r.counts, pearl.Count[watcher](w))
	pearl.QueueInsert(w, spawned{})
}

func newTestDriver(t *testing.T, opts Options) (*Driver, *pearl.World, *recordingRenderer) {
	t.Helper()
	w := pearl.New(pearl.DefaultConfig(), nil)
	pearl.Insert(w, watcher{})
	r := &recordingRenderer{}
	return New(w, r, opts, nil), w, r
}

func TestStepRunsFramePhases(t *testing.T) {
	d, w, r := newTestDriver(t, Options{})

	for i := 0; i < 3; i++ {
		if d.Step(10 * time.Millisecond) {
			t.Fatalf("Step %d requested stop", i)
		}
	}

	l, _ := resource.Get[frameLog](w.Resources())
	if len(l.updates) != 3 || l.updates[0] != 10*time.Millisecond {
		t.Errorf("updates = %v", l.updates)
	}
	if len(l.renders) != 3 || l.renders[2] != 3 {
		t.Errorf("renders = %v", l.renders)
	}
	if len(r.frames) != 3 || r.counts[0] != 1 {
		t.Errorf("renderer frames = %v, counts = %v", r.frames, r.counts)
	}
	// Commands queued by the renderer are applied by the cleanup phase.
	if n := pearl.Count[spawned](w); n != 3 {
		t.Errorf("Count[spawned] = %d, want 3", n)
	}
}

func TestBusInputArrivesNextFrame(t *testing.T) {
	d, w, _ := newTestDriver(t, Options{})

	event.Emit(d.Bus(), event.KeyboardInput{Key: "a", Pressed: true})
	d.Step(time.Millisecond)
	l, _ := resource.Get[frameLog](w.Resources())
	if len(l.keys) != 1 || l.keys[0] != "a" {
		t.Fatalf("keys = %v", l.keys)
	}
	event.Emit(d.Bus(), event.WindowResize{Width: 1, Height: 1})
	d.Step(time.Millisecond)
	l, _ = resource.Get[frameLog](w.Resources())
	if l.resizes != 1 {
		t.Errorf("resizes = %d", l.resizes)
	}
}

func TestScriptedQuit(t *testing.T) {
	d, w, _ := newTestDriver(t, Options{})
	s, err := data.ParseScenario([]byte(`
inputs:
  - frame: 2
    key: x
  - frame: 4
    key: q
`))
	if err != nil {
		t.Fatal(err)
	}
	d.SetScript(s)

	stopped := 0
	for i := 0; i < 10; i++ {
		if d.Step(time.Millisecond) {
			stopped = i + 1
			break
		}
	}
	if stopped != 4 {
		t.Fatalf("stopped at frame %d, want 4", stopped)
	}
	l, _ := resource.Get[frameLog](w.Resources())
	if len(l.keys) != 2 || l.keys[0] != "x" || l.keys[1] != "q" {
		t.Errorf("keys = %v", l.keys)
	}
}

func TestMaxFrames(t *testing.T) {
	d, _, _ := newTestDriver(t, Options{MaxFrames: 2})
	if d.Step(0) {
		t.Fatal("stopped after frame 1")
	}
	if !d.Step(0) {
		t.Fatal("did not stop after frame 2")
	}
}

func TestRunStopsOnWindowClose(t *testing.T) {
	d, w, _ := newTestDriver(t, Options{TickRate: time.Millisecond, MaxFrames: 1000})
	event.Emit(d.Bus(), event.WindowClose{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	exit, ok := resource.Get[event.ExitRequested](w.Resources())
	if !ok || exit.Reason != "window closed" {
		t.Errorf("ExitRequested = %+v,%v", exit, ok)
	}
	if d.Frame() != 1 {
		t.Errorf("Frame = %d, want 1", d.Frame())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	d, _, _ := newTestDriver(t, Options{TickRate: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if d.Frame() != 0 {
		t.Errorf("Frame = %d, want 0", d.Frame())
	}
}

func TestStepCountsOverruns(t *testing.T) {
	clock := time.Unix(0, 0)
	tick := func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}

	// Each of the four phases reads as 1ms, so a frame takes 4ms.
	slow, _, _ := newTestDriver(t, Options{TickRate: 2 * time.Millisecond, Clock: tick})
	fast, _, _ := newTestDriver(t, Options{TickRate: 10 * time.Millisecond, Clock: tick})
	for i := 0; i < 3; i++ {
		slow.Step(time.Millisecond)
		fast.Step(time.Millisecond)
	}

	if n := slow.Overruns(); n != 3 {
		t.Errorf("slow overruns = %d, want 3", n)
	}
	if n := fast.Overruns(); n != 0 {
		t.Errorf("fast overruns = %d, want 0", n)
	}
	if got := slow.Timings().Total(); got != 4*time.Millisecond {
		t.Errorf("Timings().Total = %s, want 4ms", got)
	}
}
