package trigger

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Kind is the category of an incoming event.
type Kind string

const (
	Push        Kind = "push"
	PullRequest Kind = "pull_request"
)

// ParseKind converts a string into a Kind, rejecting unknown values.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Push, PullRequest:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown event kind %q", s)
}

// Event is one external trigger occurrence. It is immutable and
// consumed exactly once per evaluation.
type Event struct {
	Kind Kind   `json:"kind"`
	Ref  string `json:"ref"`
}

// Rule is one (kind, ref-pattern) pair from the pipeline definition.
// Push rules match their ref pattern; pull_request rules match any ref.
// Ref patterns support doublestar globs, so a literal ref like
// "refs/heads/main" matches only itself while "refs/heads/release/**"
// matches a whole subtree.
type Rule struct {
	Kind       Kind
	RefPattern string
}

// Match reports whether the event matches at least one rule.
// It is a pure function with no error conditions: malformed events are
// the caller's boundary-validation problem, and a pattern that fails to
// compile simply does not match.
func Match(ev Event, rules []Rule) bool {
	for _, r := range rules {
		if r.Kind != ev.Kind {
			continue
		}
		if r.Kind == PullRequest {
			return true
		}
		if ok, err := doublestar.Match(r.RefPattern, ev.Ref); err == nil && ok {
			return true
		}
	}
	return false
}
