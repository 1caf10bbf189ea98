// Package nlu turns raw command text into an intent plus slot values. The
// skill registry never parses language; this package is the collaborator
// that does, combining ordered pattern rules with an optional
// embedding-based semantic matcher.
package nlu

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Resolution is a resolved intent with captured slot values.
type Resolution struct {
	Intent string
	Slots  map[string]any
	Score  float64 // 1.0 for pattern matches, cosine similarity for semantic
}

// Resolver maps raw command text to an intent. A nil result with a nil
// error means "no intent recognized", which the caller reports as
// unhandled rather than failed.
type Resolver interface {
	Resolve(ctx context.Context, text string) (*Resolution, error)
}

// Rule is one pattern rule from the intents file. Patterns are regular
// expressions matched case-insensitively against the whole utterance;
// named capture groups become slots.
type Rule struct {
	Intent   string            `yaml:"intent"`
	Patterns []string          `yaml:"patterns"`
	Examples []string          `yaml:"examples,omitempty"` // seed phrases for the semantic matcher
	Slots    map[string]string `yaml:"slots,omitempty"`    // fixed slot values set on match
}

type compiledRule struct {
	rule     Rule
	patterns []*regexp.Regexp
}

// PatternResolver resolves intents with ordered regex rules. First matching
// rule wins, in file order.
type PatternResolver struct {
	rules []compiledRule
}

// LoadRules reads and compiles a YAML intent rules file. A missing file is
// not an error: it yields an empty resolver, matching nothing.
func LoadRules(path string) (*PatternResolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &PatternResolver{}, nil
		}
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}
	return ParseRules(data)
}

// ParseRules compiles rules from YAML bytes.
func ParseRules(data []byte) (*PatternResolver, error) {
	var doc struct {
		Intents []Rule `yaml:"intents"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}

	r := &PatternResolver{}
	for _, rule := range doc.Intents {
		if rule.Intent == "" {
			return nil, fmt.Errorf("parse rules: rule without intent")
		}
		cr := compiledRule{rule: rule}
		for _, p := range rule.Patterns {
			re, err := regexp.Compile("(?i)^" + p + "$")
			if err != nil {
				return nil, fmt.Errorf("rule %s: pattern %q: %w", rule.Intent, p, err)
			}
			cr.patterns = append(cr.patterns, re)
		}
		r.rules = append(r.rules, cr)
	}
	return r, nil
}

// Rules returns the loaded rules in file order.
func (r *PatternResolver) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	for i, cr := range r.rules {
		out[i] = cr.rule
	}
	return out
}

// Resolve matches text against the rules in order. Named capture groups
// become slots; fixed slots from the rule are applied first so captures
// can override them.
func (r *PatternResolver) Resolve(_ context.Context, text string) (*Resolution, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	for _, cr := range r.rules {
		for _, re := range cr.patterns {
			m := re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			slots := make(map[string]any, len(cr.rule.Slots))
			for k, v := range cr.rule.Slots {
				slots[k] = v
			}
			for i, name := range re.SubexpNames() {
				if i == 0 || name == "" || m[i] == "" {
					continue
				}
				slots[name] = m[i]
			}
			return &Resolution{Intent: cr.rule.Intent, Slots: slots, Score: 1.0}, nil
		}
	}
	return nil, nil
}

var _ Resolver = (*PatternResolver)(nil)
