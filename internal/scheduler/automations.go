package scheduler

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Automation is one scheduled intent from the automations file.
type Automation struct {
	Name        string         `yaml:"name"`
	Cron        string         `yaml:"cron"`
	Intent      string         `yaml:"intent"`
	Slots       map[string]any `yaml:"slots,omitempty"`
	CooldownSec int            `yaml:"cooldown_seconds,omitempty"`
	Disabled    bool           `yaml:"disabled,omitempty"`
}

// LoadAutomations reads the automations YAML file. A missing file yields
// an empty list.
func LoadAutomations(path string) ([]Automation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read automations %s: %w", path, err)
	}
	return ParseAutomations(data)
}

// ParseAutomations parses automations from YAML bytes and validates each
// entry's cron expression and intent.
func ParseAutomations(data []byte) ([]Automation, error) {
	var doc struct {
		Automations []Automation `yaml:"automations"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse automations: %w", err)
	}

	for i, a := range doc.Automations {
		if a.Name == "" {
			return nil, fmt.Errorf("automation %d: name is required", i)
		}
		if a.Intent == "" {
			return nil, fmt.Errorf("automation %q: intent is required", a.Name)
		}
		if _, err := ParseCron(a.Cron); err != nil {
			return nil, fmt.Errorf("automation %q: %w", a.Name, err)
		}
	}
	return doc.Automations, nil
}
