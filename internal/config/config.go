package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/g960059/hemosim/internal/circ"
	"github.com/g960059/hemosim/internal/control"
)

const (
	DefaultSpeed      = 1.0
	DefaultDurationMs = 30000.0
	DefaultTargetMAP  = 90.0
)

type Config struct {
	Speed      float64        `yaml:"speed"`
	DurationMs float64        `yaml:"duration_ms"`
	Subjects   []Subject      `yaml:"subjects"`
	Reflex     Reflex         `yaml:"reflex"`
	Protocol   []control.Step `yaml:"protocol,omitempty"`
}

// Subject describes one simulated circulation: a preset base, named
// parameter overrides on top, and an optional circulating-volume target.
type Subject struct {
	ID           string             `yaml:"id"`
	Preset       string             `yaml:"preset"`
	Overrides    map[string]float64 `yaml:"overrides"`
	TargetVolume float64            `yaml:"target_volume"`
}

type Reflex struct {
	Enabled   bool    `yaml:"enabled"`
	TargetMAP float64 `yaml:"target_map"`
}

func DefaultConfig() *Config {
	return &Config{
		Speed:      DefaultSpeed,
		DurationMs: DefaultDurationMs,
		Subjects: []Subject{
			{ID: "patient-1", Preset: "normal"},
		},
		Reflex: Reflex{
			TargetMAP: DefaultTargetMAP,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Params resolves the subject's preset and overrides into a validated
// parameter set.
func (s Subject) Params() (circ.Params, error) {
	preset, ok := GetPreset(s.Preset)
	if !ok {
		return circ.Params{}, fmt.Errorf("unknown preset: %s", s.Preset)
	}
	p, err := preset.Params()
	if err != nil {
		return circ.Params{}, err
	}
	for name, value := range s.Overrides {
		if err := p.Set(name, value); err != nil {
			return circ.Params{}, fmt.Errorf("subject %s: %w", s.ID, err)
		}
	}
	if err := p.Validate(); err != nil {
		return circ.Params{}, fmt.Errorf("subject %s: %w", s.ID, err)
	}
	return p, nil
}
