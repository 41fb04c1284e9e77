// Package config loads optional application settings from a YAML file.
// Everything here is about the app around the game — the game's own tuning
// lives in content, not here.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the app settings.
type Config struct {
	// SavePath is where snapshots are written.
	SavePath string `yaml:"save_path"`
	// Seed fixes the RNG; 0 means seed from the clock.
	Seed int64 `yaml:"seed"`
	// Autoload resumes from SavePath on startup when a save exists.
	Autoload bool `yaml:"autoload"`
}

// Default returns the settings used when no config file is given.
func Default() Config {
	return Config{
		SavePath: "storyforge_save.json",
	}
}

// Load reads a YAML config file, filling unset fields from Default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.SavePath == "" {
		cfg.SavePath = Default().SavePath
	}
	return cfg, nil
}
