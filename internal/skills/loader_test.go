package skills

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoader_NativesInRegistrationOrder(t *testing.T) {
	l := NewLoader(t.TempDir(), nil)
	l.RegisterNative("second", func(_ Host) (Skill, error) {
		return newFakeSkill("Second", []string{"b"}, nil), nil
	})
	l.RegisterNative("first", func(_ Host) (Skill, error) {
		return newFakeSkill("First", []string{"a"}, nil), nil
	})

	loaded, failures := l.Load(context.Background(), newFakeHost())
	if len(failures) != 0 {
		t.Fatalf("failures = %v", failures)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d skills, want 2", len(loaded))
	}
	if loaded[0].Name() != "Second" || loaded[1].Name() != "First" {
		t.Errorf("order = %s, %s; want registration order", loaded[0].Name(), loaded[1].Name())
	}
}

func TestLoader_FailuresAreIndependent(t *testing.T) {
	l := NewLoader(t.TempDir(), nil)
	l.RegisterNative("good", func(_ Host) (Skill, error) {
		return newFakeSkill("Good", []string{"ok"}, nil), nil
	})
	l.RegisterNative("errors", func(_ Host) (Skill, error) {
		return nil, errors.New("missing dependency")
	})
	l.RegisterNative("panics", func(_ Host) (Skill, error) {
		panic("constructor bug")
	})
	l.RegisterNative("also_good", func(_ Host) (Skill, error) {
		return newFakeSkill("AlsoGood", []string{"fine"}, nil), nil
	})

	loaded, failures := l.Load(context.Background(), newFakeHost())

	if len(loaded) != 2 {
		t.Fatalf("loaded %d skills, want 2: %v", len(loaded), failures)
	}
	if loaded[0].Name() != "Good" || loaded[1].Name() != "AlsoGood" {
		t.Errorf("loaded = %s, %s", loaded[0].Name(), loaded[1].Name())
	}
	if len(failures) != 2 {
		t.Fatalf("failures = %v, want 2 entries", failures)
	}
	if failures["errors"] == "" {
		t.Error("missing failure record for erroring builder")
	}
	if failures["panics"] == "" {
		t.Error("missing failure record for panicking builder")
	}
}

func TestLoader_MissingSkillsDir(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "does-not-exist"), nil)
	l.RegisterNative("only", func(_ Host) (Skill, error) {
		return newFakeSkill("Only", []string{"x"}, nil), nil
	})

	loaded, failures := l.Load(context.Background(), newFakeHost())
	if len(loaded) != 1 || len(failures) != 0 {
		t.Errorf("loaded=%d failures=%v, want natives only and no failures", len(loaded), failures)
	}
}

func TestLoader_BrokenManifestRecorded(t *testing.T) {
	dir := t.TempDir()
	moduleDir := filepath.Join(dir, "broken")
	if err := os.MkdirAll(moduleDir, 0o755); err != nil {
		t.Fatal(err)
	}
	// Valid JSONC, invalid manifest: no intents, no wasm_path.
	manifest := `{
		// broken module
		"name": "broken"
	}`
	if err := os.WriteFile(filepath.Join(moduleDir, "manifest.jsonc"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(dir, nil)
	l.RegisterNative("good", func(_ Host) (Skill, error) {
		return newFakeSkill("Good", []string{"ok"}, nil), nil
	})

	loaded, failures := l.Load(context.Background(), newFakeHost())
	if len(loaded) != 1 {
		t.Fatalf("loaded %d skills, want 1", len(loaded))
	}
	if failures["broken"] == "" {
		t.Errorf("failures = %v, want entry for broken module", failures)
	}
}

func TestLoader_NonModuleDirsIgnored(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "notes"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "stray.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(dir, nil)
	loaded, failures := l.Load(context.Background(), newFakeHost())
	if len(loaded) != 0 || len(failures) != 0 {
		t.Errorf("loaded=%d failures=%v, want nothing", len(loaded), failures)
	}
}
