package skills

import (
	"context"
	"fmt"
	"log/slog"

	extism "github.com/extism/go-sdk"

	"github.com/vesperhq/vesper/internal/events"
)

// Runtime manages the lifecycle of WASM skill modules.
type Runtime struct {
	bus     *events.Bus
	plugins map[string]*loadedModule
}

type loadedModule struct {
	manifest *Manifest
	plugin   *extism.Plugin
	kv       *KVStore
}

// NewRuntime creates a runtime for loading WASM skills.
func NewRuntime(bus *events.Bus) *Runtime {
	return &Runtime{
		bus:     bus,
		plugins: make(map[string]*loadedModule),
	}
}

// Load instantiates the WASM module described by manifest and wraps it as
// a Skill. The host handle is captured for host-function secret access; the
// same handle is also passed per call through Handle.
func (r *Runtime) Load(ctx context.Context, manifest *Manifest, host Host) (*WasmSkill, error) {
	em := buildExtismManifest(manifest)

	kv := NewKVStore()
	hostFns := newHostFunctions(manifest, r.bus, kv, host)

	config := extism.PluginConfig{
		EnableWasi: true,
	}

	plugin, err := extism.NewPlugin(ctx, em, config, hostFns)
	if err != nil {
		return nil, fmt.Errorf("runtime: load skill %q: %w", manifest.Name, err)
	}

	if !plugin.FunctionExists(manifest.Func) {
		plugin.Close(ctx)
		return nil, fmt.Errorf("runtime: skill %q missing required %q export", manifest.Name, manifest.Func)
	}

	r.plugins[manifest.Name] = &loadedModule{
		manifest: manifest,
		plugin:   plugin,
		kv:       kv,
	}

	slog.Info("wasm skill loaded", "name", manifest.Name, "wasm", manifest.WasmPath, "intents", len(manifest.Intents))

	return &WasmSkill{
		Base:   NewBase(manifest.Name, manifest.Description, manifest.Intents),
		plugin: plugin,
		fn:     manifest.Func,
	}, nil
}

// Close releases all loaded skill modules.
func (r *Runtime) Close(ctx context.Context) {
	for name, lm := range r.plugins {
		if err := lm.plugin.Close(ctx); err != nil {
			slog.Warn("runtime: close skill", "name", name, "error", err)
		}
	}
	r.plugins = nil
}
