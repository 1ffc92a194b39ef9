package config

import (
	"fmt"
	"time"
)

// ValidationError represents a single validation issue with a pipeline
// definition.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a pipeline definition for structural and semantic
// errors. It returns a slice of all validation errors found (empty if
// valid).
func Validate(cfg *File) []ValidationError {
	var errs []ValidationError
	p := cfg.Pipeline

	if p.Name == "" {
		errs = append(errs, ValidationError{Field: "pipeline.name", Message: "is required"})
	}
	if len(p.Steps) == 0 {
		errs = append(errs, ValidationError{Field: "pipeline.steps", Message: "at least one step is required"})
	}

	// Step names must be present and unique; commands must be nonempty.
	stepNames := make(map[string]bool)
	for i, s := range p.Steps {
		prefix := fmt.Sprintf("pipeline.steps[%d]", i)

		if s.Name == "" {
			errs = append(errs, ValidationError{Field: prefix + ".name", Message: "is required"})
		} else if stepNames[s.Name] {
			errs = append(errs, ValidationError{
				Field:   prefix + ".name",
				Message: fmt.Sprintf("duplicate step name %q", s.Name),
			})
		}
		stepNames[s.Name] = true

		if s.Run == "" {
			errs = append(errs, ValidationError{Field: prefix + ".run", Message: "is required"})
		}

		for j, key := range s.Env {
			if key == "" {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.env[%d]", prefix, j),
					Message: "empty environment key",
				})
			}
		}
	}

	// Secret bindings must name a secret reference.
	for key, ref := range p.Secrets {
		if ref == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("pipeline.secrets.%s", key),
				Message: "empty secret reference",
			})
		}
	}

	// Push trigger needs at least one ref pattern.
	if p.On.Push != nil && len(p.On.Push.Branches) == 0 {
		errs = append(errs, ValidationError{
			Field:   "pipeline.on.push.branches",
			Message: "at least one ref pattern is required",
		})
	}

	if p.Defaults.Timeout != "" {
		if d, err := time.ParseDuration(p.Defaults.Timeout); err != nil {
			errs = append(errs, ValidationError{
				Field:   "pipeline.defaults.timeout",
				Message: fmt.Sprintf("invalid duration %q", p.Defaults.Timeout),
			})
		} else if d <= 0 {
			errs = append(errs, ValidationError{
				Field:   "pipeline.defaults.timeout",
				Message: "must be positive",
			})
		}
	}
	if p.Defaults.OutputCap < 0 {
		errs = append(errs, ValidationError{
			Field:   "pipeline.defaults.output_cap",
			Message: "must not be negative",
		})
	}

	return errs
}
