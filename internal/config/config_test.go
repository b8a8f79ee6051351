package config

import (
	"path/filepath"
	"testing"

	"github.com/g960059/hemosim/internal/control"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Speed <= 0 {
		t.Error("speed should be positive")
	}
	if cfg.DurationMs <= 0 {
		t.Error("duration should be positive")
	}
	if len(cfg.Subjects) == 0 {
		t.Fatal("expected a default subject")
	}
	if cfg.Subjects[0].Preset != "normal" {
		t.Errorf("expected normal preset, got %s", cfg.Subjects[0].Preset)
	}
}

func TestGetPreset(t *testing.T) {
	p, ok := GetPreset("aortic-stenosis")
	if !ok {
		t.Fatal("expected preset")
	}
	if p.Overrides["Rav_sten"] != 250 {
		t.Errorf("expected Rav_sten 250, got %f", p.Overrides["Rav_sten"])
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if _, ok := GetPreset("nonexistent"); ok {
		t.Error("expected miss for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Errorf("expected %d presets, got %d", len(Presets), len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("names not sorted: %s before %s", names[i-1], names[i])
		}
	}
}

func TestEveryPresetBuildsValidParams(t *testing.T) {
	for name := range Presets {
		p, _ := GetPreset(name)
		params, err := p.Params()
		if err != nil {
			t.Errorf("preset %s: %v", name, err)
			continue
		}
		if err := params.Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestSubjectParamsAppliesOverrides(t *testing.T) {
	s := Subject{
		ID:     "p1",
		Preset: "hypertension",
		Overrides: map[string]float64{
			"HR": 75,
		},
	}
	p, err := s.Params()
	if err != nil {
		t.Fatal(err)
	}
	if p.HR != 75 {
		t.Errorf("expected override HR 75, got %f", p.HR)
	}
	if p.Rcs != 1300 {
		t.Errorf("expected preset Rcs 1300, got %f", p.Rcs)
	}
}

func TestSubjectParamsRejectsBadInput(t *testing.T) {
	if _, err := (Subject{ID: "p", Preset: "nope"}).Params(); err == nil {
		t.Error("expected unknown preset error")
	}
	s := Subject{ID: "p", Preset: "normal", Overrides: map[string]float64{"HR": -10}}
	if _, err := s.Params(); err == nil {
		t.Error("expected validation error for negative HR")
	}
	s = Subject{ID: "p", Preset: "normal", Overrides: map[string]float64{"Rbogus": 1}}
	if _, err := s.Params(); err == nil {
		t.Error("expected unknown parameter error")
	}
}

func TestConfigRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Speed = 2.5
	cfg.Subjects = append(cfg.Subjects, Subject{
		ID:        "patient-2",
		Preset:    "heart-failure",
		Overrides: map[string]float64{"HR": 85},
	})
	cfg.Protocol = []control.Step{
		{AtMs: 5000, Subject: "patient-2", Name: "Rcs", Value: 1400},
	}

	path := filepath.Join(t.TempDir(), "hemosim.yaml")
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Speed != 2.5 {
		t.Errorf("expected speed 2.5, got %f", loaded.Speed)
	}
	if len(loaded.Subjects) != 2 {
		t.Fatalf("expected 2 subjects, got %d", len(loaded.Subjects))
	}
	if loaded.Subjects[1].Overrides["HR"] != 85 {
		t.Errorf("expected override preserved, got %v", loaded.Subjects[1].Overrides)
	}
	if len(loaded.Protocol) != 1 || loaded.Protocol[0].Name != "Rcs" {
		t.Errorf("expected protocol preserved, got %+v", loaded.Protocol)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
