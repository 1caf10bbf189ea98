package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_JSONCWithComments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.jsonc")

	content := `{
		// gateway settings
		"gateway": { "host": "0.0.0.0", "port": 9000 },
		"skills": { "dir": "/opt/vesper/skills" },
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Gateway.Host != "0.0.0.0" {
		t.Errorf("expected host 0.0.0.0, got %q", cfg.Gateway.Host)
	}
	if cfg.Gateway.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Gateway.Port)
	}
	if cfg.Skills.Dir != "/opt/vesper/skills" {
		t.Errorf("unexpected skills dir %q", cfg.Skills.Dir)
	}
}

func TestLoad_EnvTemplate(t *testing.T) {
	t.Setenv("VESPER_TEST_KEY", "hunter2")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.jsonc")
	content := `{"web": {"bing_api_key": "${{ .Env.VESPER_TEST_KEY }}"}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Web.BingAPIKey != "hunter2" {
		t.Errorf("expected expanded key, got %q", cfg.Web.BingAPIKey)
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.jsonc")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Gateway.Host != "127.0.0.1" {
		t.Errorf("expected default host, got %q", cfg.Gateway.Host)
	}
	if cfg.Gateway.Port != 18520 {
		t.Errorf("expected default port, got %d", cfg.Gateway.Port)
	}
	if cfg.Events.BufferSize != 1024 {
		t.Errorf("expected default buffer size, got %d", cfg.Events.BufferSize)
	}
	if cfg.Skills.Dir == "" {
		t.Error("expected default skills dir")
	}
	if cfg.Web.Provider != "duckduckgo" {
		t.Errorf("expected default web provider, got %q", cfg.Web.Provider)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.jsonc")); err == nil {
		t.Fatal("expected error for missing config")
	}
}
