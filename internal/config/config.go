package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
)

type Config struct {
	Engine  EngineConfig  `toml:"engine"`
	Driver  DriverConfig  `toml:"driver"`
	Logging LoggingConfig `toml:"logging"`
}

type EngineConfig struct {
	RoundCap int `toml:"round_cap"` // drain rounds per listener pass
	WorkCap  int `toml:"work_cap"`  // commands applied per top-level trigger
}

type DriverConfig struct {
	TickRate   time.Duration `toml:"tick_rate"`
	MaxFrames  uint64        `toml:"max_frames"` // 0 = until exit
	Scenario   string        `toml:"scenario"`
	StatsEvery uint64        `toml:"stats_every"` // frames between renderer stat lines
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads a TOML file over the defaults. A missing file is an error unless
// optional is set, in which case the defaults are returned.
func Load(path string, optional bool) (*Config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error
	if c.Engine.RoundCap <= 0 {
		err = multierr.Append(err, fmt.Errorf("engine.round_cap must be positive, got %d", c.Engine.RoundCap))
	}
	if c.Engine.WorkCap <= 0 {
		err = multierr.Append(err, fmt.Errorf("engine.work_cap must be positive, got %d", c.Engine.WorkCap))
	}
	if c.Engine.WorkCap > 0 && c.Engine.RoundCap > c.Engine.WorkCap {
		err = multierr.Append(err, fmt.Errorf("engine.round_cap (%d) exceeds engine.work_cap (%d)", c.Engine.RoundCap, c.Engine.WorkCap))
	}
	if c.Driver.TickRate <= 0 {
		err = multierr.Append(err, fmt.Errorf("driver.tick_rate must be positive, got %s", c.Driver.TickRate))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		err = multierr.Append(err, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}
	return err
}

func defaults() *Config {
	return &Config{
		Engine: EngineConfig{
			RoundCap: 8,
			WorkCap:  65536,
		},
		Driver: DriverConfig{
			TickRate:   16 * time.Millisecond,
			MaxFrames:  0,
			Scenario:   "data/yaml/scenario.yaml",
			StatsEvery: 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
