package trigger

import "testing"

func TestMatch_PushExactRef(t *testing.T) {
	rules := []Rule{{Kind: Push, RefPattern: "refs/heads/main"}}

	if !Match(Event{Kind: Push, Ref: "refs/heads/main"}, rules) {
		t.Error("expected push to refs/heads/main to match")
	}
	if Match(Event{Kind: Push, Ref: "refs/heads/dev"}, rules) {
		t.Error("expected push to refs/heads/dev not to match")
	}
}

func TestMatch_KindMismatch(t *testing.T) {
	rules := []Rule{{Kind: Push, RefPattern: "refs/heads/main"}}

	if Match(Event{Kind: PullRequest, Ref: "refs/heads/main"}, rules) {
		t.Error("pull_request event must not match a push rule")
	}
}

func TestMatch_PullRequestIgnoresRef(t *testing.T) {
	rules := []Rule{{Kind: PullRequest}}

	for _, ref := range []string{"refs/heads/feature-x", "refs/heads/main", ""} {
		if !Match(Event{Kind: PullRequest, Ref: ref}, rules) {
			t.Errorf("pull_request event with ref %q should match", ref)
		}
	}
}

func TestMatch_GlobPattern(t *testing.T) {
	rules := []Rule{{Kind: Push, RefPattern: "refs/heads/release/**"}}

	if !Match(Event{Kind: Push, Ref: "refs/heads/release/1.2/hotfix"}, rules) {
		t.Error("expected glob pattern to match nested ref")
	}
	if Match(Event{Kind: Push, Ref: "refs/heads/main"}, rules) {
		t.Error("expected non-release ref not to match")
	}
}

func TestMatch_NoRules(t *testing.T) {
	if Match(Event{Kind: Push, Ref: "refs/heads/main"}, nil) {
		t.Error("no rules should never match")
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("push"); err != nil || k != Push {
		t.Errorf("ParseKind(push) = %v, %v", k, err)
	}
	if k, err := ParseKind("pull_request"); err != nil || k != PullRequest {
		t.Errorf("ParseKind(pull_request) = %v, %v", k, err)
	}
	if _, err := ParseKind("tag"); err == nil {
		t.Error("expected error for unknown kind")
	}
}
