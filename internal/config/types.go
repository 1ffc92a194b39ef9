package config

import (
	"time"

	"github.com/conveyor-ci/conveyor/internal/engine"
	"github.com/conveyor-ci/conveyor/internal/environ"
	"github.com/conveyor-ci/conveyor/internal/trigger"
)

// File is the top-level structure parsed from pipeline YAML.
type File struct {
	Pipeline Pipeline `yaml:"pipeline"`
}

// Pipeline defines the full pipeline: metadata, triggers, defaults,
// secret bindings, and the ordered step list.
type Pipeline struct {
	Name     string            `yaml:"name"`
	Runtime  Runtime           `yaml:"runtime"`
	On       Triggers          `yaml:"on"`
	Defaults Defaults          `yaml:"defaults"`
	EnvFile  string            `yaml:"env_file"`
	Secrets  map[string]string `yaml:"secrets"`
	Steps    []Step            `yaml:"steps"`
}

// Runtime names the language runtime the workspace needs. It is passed
// through to provisioning commands, not interpreted by the engine.
type Runtime struct {
	Language string `yaml:"language"`
	Version  string `yaml:"version"`
}

// Triggers declares which events start a run.
type Triggers struct {
	Push        *PushTrigger `yaml:"push"`
	PullRequest bool         `yaml:"pull_request"`
}

// PushTrigger limits push events to a set of ref patterns.
type PushTrigger struct {
	Branches []string `yaml:"branches"`
}

// Defaults holds limits applied to every step.
type Defaults struct {
	Timeout   string `yaml:"timeout"`
	OutputCap int64  `yaml:"output_cap"`
}

// Step is one named unit of work. Declaration order is execution
// order; the engine never reorders steps.
type Step struct {
	Name string   `yaml:"name"`
	Run  string   `yaml:"run"`
	Env  []string `yaml:"env"`
}

// Rules converts the trigger declaration into evaluator rules.
func (p *Pipeline) Rules() []trigger.Rule {
	var rules []trigger.Rule
	if p.On.Push != nil {
		for _, ref := range p.On.Push.Branches {
			rules = append(rules, trigger.Rule{Kind: trigger.Push, RefPattern: ref})
		}
	}
	if p.On.PullRequest {
		rules = append(rules, trigger.Rule{Kind: trigger.PullRequest})
	}
	return rules
}

// StepSpecs converts the declared steps into engine specs.
func (p *Pipeline) StepSpecs() []engine.StepSpec {
	specs := make([]engine.StepSpec, 0, len(p.Steps))
	for _, s := range p.Steps {
		specs = append(specs, engine.StepSpec{Name: s.Name, Command: s.Run, EnvKeys: s.Env})
	}
	return specs
}

// Bindings returns the secret bindings: environment variable name to
// secret reference. Declared env keys without an entry here resolve
// from the base environment instead.
func (p *Pipeline) Bindings() environ.Bindings {
	b := make(environ.Bindings, len(p.Secrets))
	for k, ref := range p.Secrets {
		b[k] = ref
	}
	return b
}

// StepTimeout returns the configured per-step timeout, or fallback
// when none is set.
func (p *Pipeline) StepTimeout(fallback time.Duration) time.Duration {
	if p.Defaults.Timeout == "" {
		return fallback
	}
	d, err := time.ParseDuration(p.Defaults.Timeout)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
