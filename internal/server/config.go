package server

import "gopkg.in/ini.v1"

// Config carries daemon settings. Scenario content (subjects, presets,
// overrides) stays in the yaml layer; this file only shapes the process.
type Config struct {
	Addr           string
	TickMs         int
	PushEveryTicks int
	DataDir        string
}

func DefaultConfig() Config {
	return Config{
		Addr:           ":8751",
		TickMs:         16,
		PushEveryTicks: 4,
		DataDir:        "runs",
	}
}

// LoadConfig reads an ini file over the defaults. An empty path returns the
// defaults without touching the filesystem.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	file, err := ini.Load(path)
	if err != nil {
		return cfg, err
	}
	sec := file.Section("server")
	cfg.Addr = sec.Key("Addr").MustString(cfg.Addr)
	cfg.TickMs = sec.Key("TickMs").MustInt(cfg.TickMs)
	cfg.PushEveryTicks = sec.Key("PushEveryTicks").MustInt(cfg.PushEveryTicks)
	cfg.DataDir = sec.Key("DataDir").MustString(cfg.DataDir)
	if cfg.TickMs < 1 {
		cfg.TickMs = 1
	}
	if cfg.PushEveryTicks < 1 {
		cfg.PushEveryTicks = 1
	}
	return cfg, nil
}
