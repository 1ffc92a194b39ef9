package environ

import (
	"fmt"
	"sort"

	"github.com/conveyor-ci/conveyor/internal/secrets"
)

// Bindings maps an environment variable name to the name of the secret
// that backs it. Resolved at run start, never persisted.
type Bindings map[string]string

// ResolutionError reports a declared environment key that could not be
// resolved to a value.
type ResolutionError struct {
	Key string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("missing secret for environment key %q", e.Key)
}

// Snapshot is the immutable environment for exactly one step
// invocation. It is built fresh per step and discarded afterwards;
// snapshots must never be reused across steps because secret material
// can rotate between runs.
type Snapshot struct {
	vars map[string]string
}

// Get returns the value for a variable name.
func (s *Snapshot) Get(name string) (string, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// Len returns the number of variables in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.vars)
}

// Environ renders the snapshot as KEY=VALUE pairs in sorted key order,
// suitable for exec.Cmd.Env.
func (s *Snapshot) Environ() []string {
	out := make([]string, 0, len(s.vars))
	for k, v := range s.vars {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// Resolve builds the environment snapshot for one step. It starts from
// base (process-wide variables such as PATH), then overlays each
// declared key in declaration order: a key bound to a secret takes the
// secret's value, overriding any base value of the same name; an
// unbound key falls back to the base value. A later declared key wins
// on name collision. A declared key with neither a resolvable secret
// nor a base value fails with ResolutionError before any process is
// spawned.
func Resolve(base map[string]string, bindings Bindings, declared []string, src secrets.Source) (*Snapshot, error) {
	vars := make(map[string]string, len(base)+len(declared))
	for k, v := range base {
		vars[k] = v
	}

	for _, key := range declared {
		if ref, bound := bindings[key]; bound {
			val, ok := src.Get(ref)
			if !ok {
				return nil, &ResolutionError{Key: key}
			}
			vars[key] = val
			continue
		}
		if _, ok := vars[key]; !ok {
			return nil, &ResolutionError{Key: key}
		}
	}

	return &Snapshot{vars: vars}, nil
}
