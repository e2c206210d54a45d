package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/width"

	"github.com/boba-engine/boba/internal/config"
	"github.com/boba-engine/boba/internal/core/event"
	"github.com/boba-engine/boba/internal/core/pearl"
	"github.com/boba-engine/boba/internal/core/resource"
	"github.com/boba-engine/boba/internal/data"
	"github.com/boba-engine/boba/internal/driver"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup summary ───────────────────────────────────────────────

const statColumn = 40

// summary prints the startup report. Values are right-aligned by display
// width so wide labels keep the column.
type summary struct {
	out io.Writer
}

func (s summary) header(w *pearl.World) {
	fmt.Fprintf(s.out, "\n  \033[36;1mboba\033[0m v0.1.0  \033[90mworld %s\033[0m\n\n", w.ID())
}

func (s summary) section(title string) {
	fmt.Fprintf(s.out, "  \033[33m%s\033[0m\n", title)
}

func (s summary) stat(label string, v any) {
	val := fmt.Sprint(v)
	pad := statColumn - displayWidth(label) - displayWidth(val)
	if pad < 1 {
		pad = 1
	}
	fmt.Fprintf(s.out, "    %s%s%s\n", label, strings.Repeat(" ", pad), val)
}

func (s summary) done(msg string) {
	fmt.Fprintf(s.out, "  \033[32m✓\033[0m %s\n\n", msg)
}

// displayWidth counts wide and fullwidth runes as two columns.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

// report prints the effective engine caps and what the scenario spawned.
func report(s summary, w *pearl.World, sc *data.Scenario, spawned int) {
	s.header(w)
	cfg := w.Config()
	s.section("engine")
	s.stat("round cap", cfg.RoundCap)
	s.stat("work cap", cfg.WorkCap)
	s.stat("resources", w.Resources().Len())
	fmt.Fprintln(s.out)

	s.section("scenario")
	s.stat("pearls", spawned)
	for _, id := range w.Pearls().Types() {
		s.stat(fmt.Sprintf("  %s (%d listeners)", id, w.Events().ListenerCount(id)), w.Pearls().Count(id))
	}
	s.stat("scripted inputs", sc.InputCount())
	s.done(fmt.Sprintf("scenario %q loaded", sc.Name))
}

// ── Main logic ────────────────────────────────────────────────────

func run() error {
	// 1. Load config. The default path is optional; an explicit one is not.
	cfgPath, optional := "config/boba.toml", true
	if p := os.Getenv("BOBA_CONFIG"); p != "" {
		cfgPath, optional = p, false
	}
	cfg, err := config.Load(cfgPath, optional)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 3. Build the world
	world := pearl.New(pearl.Config{
		RoundCap: cfg.Engine.RoundCap,
		WorkCap:  cfg.Engine.WorkCap,
	}, log)
	defer world.Close()
	resource.Insert(world.Resources(), log)

	// 4. Load the scenario and spawn its pearls
	scenario, err := data.LoadScenario(cfg.Driver.Scenario)
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}
	n, err := spawn(world, scenario)
	if err != nil {
		return fmt.Errorf("spawn: %w", err)
	}
	report(summary{out: os.Stdout}, world, scenario, n)

	// 5. Frame loop
	d := driver.New(world, newStatsRenderer(log, cfg.Driver.StatsEvery), driver.Options{
		TickRate:  cfg.Driver.TickRate,
		MaxFrames: cfg.Driver.MaxFrames,
	}, log)
	d.SetScript(scenario)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The first signal closes the window, which lets pearls decide how to
	// exit; a second one stops the loop outright.
	shutdownCh := make(chan os.Signal, 2)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)
	go func() {
		sig := <-shutdownCh
		log.Info("shutdown signal", zap.String("signal", sig.String()))
		event.Emit(d.Bus(), event.WindowClose{})
		select {
		case <-shutdownCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := d.Run(ctx); err != nil {
		return fmt.Errorf("frame loop: %w", err)
	}

	diag := world.Diagnostics()
	log.Info("stopped",
		zap.Uint64("frames", d.Frame()),
		zap.Uint64("overruns", d.Overruns()),
		zap.Uint64("commands_applied", diag.Applied),
		zap.Uint64("drain_rounds", diag.Rounds),
		zap.Uint64("saturations", diag.Saturations),
		zap.Uint64("reentrant_denials", diag.ReentrantDenials),
	)
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
