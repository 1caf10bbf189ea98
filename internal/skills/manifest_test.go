package skills

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.jsonc")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, `{
		// Greeter skill
		"name": "greeter",
		"description": "Greets people",
		"intents": ["greet.hello", "greet.bye"],
		"wasm_path": "greeter.wasm",
		"capabilities": {
			"http": {"allowed_hosts": ["api.example.com"]},
			"secrets": ["greeter_token"],
			"timeout": 5000
		},
		"config": {"tone": "cheerful"}
	}`)

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Name != "greeter" {
		t.Errorf("Name = %q, want %q", m.Name, "greeter")
	}
	if len(m.Intents) != 2 || m.Intents[0] != "greet.hello" {
		t.Errorf("Intents = %v", m.Intents)
	}
	if m.Func != "handle" {
		t.Errorf("Func = %q, want default %q", m.Func, "handle")
	}
	if m.Capabilities.HTTP == nil || len(m.Capabilities.HTTP.AllowedHosts) != 1 {
		t.Errorf("HTTP capability = %+v", m.Capabilities.HTTP)
	}
	if len(m.Capabilities.Secrets) != 1 || m.Capabilities.Secrets[0] != "greeter_token" {
		t.Errorf("Secrets = %v", m.Capabilities.Secrets)
	}
	if m.Config["tone"] != "cheerful" {
		t.Errorf("Config = %v", m.Config)
	}
}

func TestLoadManifest_Validation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing name", `{"intents": ["a"], "wasm_path": "x.wasm"}`},
		{"missing intents", `{"name": "x", "wasm_path": "x.wasm"}`},
		{"missing wasm_path", `{"name": "x", "intents": ["a"]}`},
		{"bad jsonc", `{"name": `},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadManifest(writeManifest(t, tc.content)); err == nil {
				t.Errorf("expected error for %s", tc.name)
			}
		})
	}
}

func TestLoadManifest_CustomFunc(t *testing.T) {
	path := writeManifest(t, `{
		"name": "weather",
		"intents": ["weather.get"],
		"wasm_path": "weather.wasm",
		"func": "forecast"
	}`)

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Func != "forecast" {
		t.Errorf("Func = %q, want %q", m.Func, "forecast")
	}
}

func TestBuildExtismManifest_CapabilityGates(t *testing.T) {
	m := &Manifest{
		Name:     "gated",
		Intents:  []string{"g"},
		WasmPath: "gated.wasm",
		Capabilities: CapabilitySet{
			HTTP:       &HTTPCapability{AllowedHosts: []string{"api.example.com"}},
			Filesystem: &FSCapability{AllowedPaths: map[string]string{"/tmp/gated": "/data"}},
			Memory:     &MemoryLimit{MaxPages: 64},
			Timeout:    2000,
		},
		Config: map[string]string{"k": "v"},
	}

	em := buildExtismManifest(m)
	if len(em.AllowedHosts) != 1 || em.AllowedHosts[0] != "api.example.com" {
		t.Errorf("AllowedHosts = %v", em.AllowedHosts)
	}
	if em.AllowedPaths["/tmp/gated"] != "/data" {
		t.Errorf("AllowedPaths = %v", em.AllowedPaths)
	}
	if em.Config["k"] != "v" {
		t.Errorf("Config = %v", em.Config)
	}
	if em.Memory == nil || em.Memory.MaxPages != 64 {
		t.Errorf("Memory = %+v", em.Memory)
	}
	if em.Timeout != 2000 {
		t.Errorf("Timeout = %d, want 2000", em.Timeout)
	}
}

func TestBuildExtismManifest_DenyByDefault(t *testing.T) {
	m := &Manifest{Name: "plain", Intents: []string{"p"}, WasmPath: "plain.wasm"}

	em := buildExtismManifest(m)
	if len(em.AllowedHosts) != 0 {
		t.Errorf("AllowedHosts = %v, want none", em.AllowedHosts)
	}
	if len(em.AllowedPaths) != 0 {
		t.Errorf("AllowedPaths = %v, want none", em.AllowedPaths)
	}
	if em.Memory != nil {
		t.Errorf("Memory = %+v, want nil", em.Memory)
	}
}
