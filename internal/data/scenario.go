package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SpawnEntry describes pearls to insert at startup.
type SpawnEntry struct {
	Kind   string  `yaml:"kind"`
	Name   string  `yaml:"name"`
	Count  int     `yaml:"count"`
	Speed  float64 `yaml:"speed"`
	Frames int     `yaml:"frames"`
}

type Size struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type Motion struct {
	X  float64 `yaml:"x"`
	Y  float64 `yaml:"y"`
	DX float64 `yaml:"dx"`
	DY float64 `yaml:"dy"`
}

// InputEntry is one scripted input, emitted on its frame. Exactly one of
// Key, Resize, Motion or Close is set.
type InputEntry struct {
	Frame   uint64  `yaml:"frame"`
	Key     string  `yaml:"key"`
	Release bool    `yaml:"release"`
	Resize  *Size   `yaml:"resize"`
	Motion  *Motion `yaml:"motion"`
	Close   bool    `yaml:"close"`
}

type scenarioFile struct {
	Name   string       `yaml:"name"`
	Spawns []SpawnEntry `yaml:"spawns"`
	Inputs []InputEntry `yaml:"inputs"`
}

// Scenario holds the startup population and the scripted input of a run.
type Scenario struct {
	Name    string
	Spawns  []SpawnEntry
	byFrame map[uint64][]InputEntry
	inputs  int
}

// LoadScenario loads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return s, nil
}

func ParseScenario(data []byte) (*Scenario, error) {
	var f scenarioFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	s := &Scenario{
		Name:    f.Name,
		Spawns:  make([]SpawnEntry, 0, len(f.Spawns)),
		byFrame: make(map[uint64][]InputEntry, len(f.Inputs)),
	}
	for i, sp := range f.Spawns {
		if sp.Kind == "" {
			return nil, fmt.Errorf("spawn %d: missing kind", i)
		}
		if sp.Count < 0 {
			return nil, fmt.Errorf("spawn %d (%s): negative count %d", i, sp.Kind, sp.Count)
		}
		if sp.Count == 0 {
			sp.Count = 1
		}
		s.Spawns = append(s.Spawns, sp)
	}
	for i, in := range f.Inputs {
		if n := in.kinds(); n != 1 {
			return nil, fmt.Errorf("input %d (frame %d): want exactly one of key/resize/motion/close, got %d", i, in.Frame, n)
		}
		s.byFrame[in.Frame] = append(s.byFrame[in.Frame], in)
		s.inputs++
	}
	return s, nil
}

func (in InputEntry) kinds() int {
	n := 0
	if in.Key != "" {
		n++
	}
	if in.Resize != nil {
		n++
	}
	if in.Motion != nil {
		n++
	}
	if in.Close {
		n++
	}
	return n
}

// InputsAt returns the scripted inputs for a frame, in file order.
func (s *Scenario) InputsAt(frame uint64) []InputEntry {
	return s.byFrame[frame]
}

// Count returns the number of pearls the scenario spawns.
func (s *Scenario) Count() int {
	n := 0
	for _, sp := range s.Spawns {
		n += sp.Count
	}
	return n
}

// InputCount returns the number of scripted inputs.
func (s *Scenario) InputCount() int { return s.inputs }
