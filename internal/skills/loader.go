package skills

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Builder constructs a native skill. The host assistant handle is the sole
// constructor argument, mirroring how WASM skills receive it at load time.
type Builder func(host Host) (Skill, error)

type namedBuilder struct {
	id    string
	build Builder
}

// Loader discovers and instantiates skill modules: native skills from an
// explicit builder table (registration order), then WASM modules from the
// configured skills directory (directory-listing order, non-recursive).
//
// Loading is best-effort: a broken module is recorded in the failure map
// and never prevents another module from loading.
type Loader struct {
	dir     string
	runtime *Runtime
	natives []namedBuilder
}

// NewLoader creates a loader over an explicit skills directory. The
// directory is configuration, never derived from the binary's location.
func NewLoader(dir string, runtime *Runtime) *Loader {
	return &Loader{dir: dir, runtime: runtime}
}

// RegisterNative adds a native skill builder to the static table. Builders
// run in registration order during Load.
func (l *Loader) RegisterNative(id string, build Builder) {
	l.natives = append(l.natives, namedBuilder{id: id, build: build})
}

// Load instantiates every registered native skill and every WASM module
// found in the skills directory. It returns the ordered skill list
// (discovery order) and the per-module failure map. No failure is fatal.
func (l *Loader) Load(ctx context.Context, host Host) ([]Skill, map[string]string) {
	var loaded []Skill
	failures := make(map[string]string)

	for _, nb := range l.natives {
		skill, err := l.buildNative(nb, host)
		if err != nil {
			slog.Error("failed to load skill", "module", nb.id, "error", err)
			failures[nb.id] = err.Error()
			continue
		}
		loaded = append(loaded, skill)
		slog.Info("skill loaded", "name", skill.Name(), "intents", len(skill.Intents()))
	}

	loaded = l.loadWasmDir(ctx, host, loaded, failures)

	slog.Info("skill loading complete", "loaded", len(loaded), "failed", len(failures))
	return loaded, failures
}

// buildNative runs one builder with panic containment, so a faulty
// constructor is recorded like any other load failure.
func (l *Loader) buildNative(nb namedBuilder, host Host) (skill Skill, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			skill = nil
			err = fmt.Errorf("constructor panicked: %v", rec)
		}
	}()

	skill, err = nb.build(host)
	if err != nil {
		return nil, err
	}
	if skill == nil {
		return nil, fmt.Errorf("builder returned no skill")
	}
	return skill, nil
}

func (l *Loader) loadWasmDir(ctx context.Context, host Host, loaded []Skill, failures map[string]string) []Skill {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("skills directory not found, skipping", "dir", l.dir)
			return loaded
		}
		slog.Warn("read skills dir", "dir", l.dir, "error", err)
		return loaded
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		manifestPath := filepath.Join(l.dir, entry.Name(), "manifest.jsonc")
		if _, err := os.Stat(manifestPath); os.IsNotExist(err) {
			continue // not a skill module
		}

		skill, err := l.loadWasmModule(ctx, entry.Name(), manifestPath, host)
		if err != nil {
			slog.Error("failed to load skill", "module", entry.Name(), "error", err)
			failures[entry.Name()] = err.Error()
			continue
		}
		loaded = append(loaded, skill)
		slog.Info("skill loaded", "name", skill.Name(), "intents", len(skill.Intents()))
	}
	return loaded
}

func (l *Loader) loadWasmModule(ctx context.Context, module, manifestPath string, host Host) (Skill, error) {
	manifest, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	// Resolve wasm_path relative to the manifest directory.
	if manifest.WasmPath != "" && !filepath.IsAbs(manifest.WasmPath) {
		manifest.WasmPath = filepath.Join(filepath.Dir(manifestPath), manifest.WasmPath)
	}

	if l.runtime == nil {
		return nil, fmt.Errorf("module %s: no wasm runtime configured", module)
	}
	return l.runtime.Load(ctx, manifest, host)
}
