package skills

import (
	"context"

	"github.com/vesperhq/vesper/internal/config"
	"github.com/vesperhq/vesper/internal/events"
)

// Setup builds the full skill system from configuration: the WASM runtime,
// the native builder table, the loader pass, and the registry. Skills named
// in cfg.Skills.Disabled start disabled; unknown names are ignored.
func Setup(ctx context.Context, cfg *config.Config, bus *events.Bus, host Host) (*Registry, *Runtime) {
	runtime := NewRuntime(bus)

	loader := NewLoader(cfg.Skills.Dir, runtime)
	loader.RegisterNative("clock", NewClockSkill)
	loader.RegisterNative("timer", NewTimerSkill)
	loader.RegisterNative("system", NewSystemSkill)
	loader.RegisterNative("apps", NewAppsSkill(cfg.Apps.Commands))
	loader.RegisterNative("web", NewWebSkill(cfg.Web))

	loaded, failures := loader.Load(ctx, host)
	registry := NewRegistry(loaded, failures, host, bus)

	for _, name := range cfg.Skills.Disabled {
		registry.EnableSkill(name, false)
	}
	return registry, runtime
}
