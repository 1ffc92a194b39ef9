package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads and parses a pipeline definition from the given YAML file
// path. After parsing, it applies defaults to fields left unset.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pipeline file: %w", err)
	}

	var cfg File
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing pipeline YAML: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault searches for a pipeline definition in standard locations
// and loads the first one found. Search order: ./conveyor.yaml,
// ./.conveyor/pipeline.yaml
func LoadDefault() (*File, error) {
	candidates := []string{"conveyor.yaml", ".conveyor/pipeline.yaml"}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	return nil, fmt.Errorf("no pipeline definition found (searched: %v)", candidates)
}

// applyDefaults fills in limits for pipelines that don't set their own.
func applyDefaults(cfg *File) {
	p := &cfg.Pipeline

	if p.Defaults.Timeout == "" {
		p.Defaults.Timeout = "10m"
	}
	if p.Defaults.OutputCap <= 0 {
		p.Defaults.OutputCap = 1 << 20
	}
}
