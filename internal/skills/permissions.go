package skills

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// IntentPolicy is an allow/deny filter over intent names using doublestar
// globs. Intent segments are dot-separated ("home.lights.on"); patterns use
// the same notation ("home.**" matches the whole subtree).
//
// Deny patterns win over allow patterns. An empty allow list permits every
// intent not explicitly denied.
type IntentPolicy struct {
	allow []string
	deny  []string
}

// NewIntentPolicy compiles an intent policy from glob pattern lists.
func NewIntentPolicy(allow, deny []string) *IntentPolicy {
	return &IntentPolicy{allow: allow, deny: deny}
}

// Allowed reports whether intent may be dispatched under this policy.
func (p *IntentPolicy) Allowed(intent string) bool {
	if p == nil {
		return true
	}
	for _, pattern := range p.deny {
		if matchIntent(pattern, intent) {
			return false
		}
	}
	if len(p.allow) == 0 {
		return true
	}
	for _, pattern := range p.allow {
		if matchIntent(pattern, intent) {
			return true
		}
	}
	return false
}

// matchIntent matches a dot-separated intent against a dot-separated glob.
// Dots are mapped to path separators so "**" spans segments while "*"
// stays within one.
func matchIntent(pattern, intent string) bool {
	ok, err := doublestar.Match(
		strings.ReplaceAll(pattern, ".", "/"),
		strings.ReplaceAll(intent, ".", "/"),
	)
	return err == nil && ok
}
