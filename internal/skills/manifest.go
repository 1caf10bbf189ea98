package skills

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// Manifest describes a WASM skill module: its identity, declared intents,
// wasm binary, and capability grants.
type Manifest struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Intents      []string          `json:"intents"`
	WasmPath     string            `json:"wasm_path"`
	Func         string            `json:"func,omitempty"` // WASM export name (default: "handle")
	Capabilities CapabilitySet     `json:"capabilities"`
	Config       map[string]string `json:"config"`
}

// LoadManifest reads and parses a JSONC skill manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	var m Manifest
	if err := json.Unmarshal(standardized, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest %s: %w", path, err)
	}

	if m.Name == "" {
		return nil, fmt.Errorf("manifest %s: name is required", path)
	}
	if len(m.Intents) == 0 {
		return nil, fmt.Errorf("manifest %s: at least one intent is required", path)
	}
	if m.WasmPath == "" {
		return nil, fmt.Errorf("manifest %s: wasm_path is required", path)
	}
	if m.Func == "" {
		m.Func = "handle"
	}

	return &m, nil
}
