package cli

import (
	"fmt"

	"github.com/conveyor-ci/conveyor/internal/config"
	"github.com/conveyor-ci/conveyor/internal/secrets"
)

// loadConfig loads the pipeline definition from --config or the
// default search locations, refusing definitions that fail validation.
func loadConfig() (*config.File, error) {
	var (
		cfg *config.File
		err error
	)
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}

	if errs := config.Validate(cfg); len(errs) > 0 {
		return nil, fmt.Errorf("invalid pipeline definition: %s (and %d more)", errs[0], len(errs)-1)
	}
	return cfg, nil
}

// openSecrets builds the secret source for a run: the pipeline's env
// file when configured, falling back to the process environment.
func openSecrets(cfg *config.File) (secrets.Source, error) {
	if cfg.Pipeline.EnvFile == "" {
		return secrets.EnvSource{}, nil
	}
	fileSrc, err := secrets.OpenFile(cfg.Pipeline.EnvFile)
	if err != nil {
		return nil, fmt.Errorf("open secrets: %w", err)
	}
	return secrets.Chain{fileSrc, secrets.EnvSource{}}, nil
}
