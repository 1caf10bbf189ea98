package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/vesperhq/vesper/internal/assistant"
	"github.com/vesperhq/vesper/internal/config"
	"github.com/vesperhq/vesper/internal/events"
	"github.com/vesperhq/vesper/internal/nlu"
	"github.com/vesperhq/vesper/internal/prefs"
	"github.com/vesperhq/vesper/internal/secrets"
	"github.com/vesperhq/vesper/internal/skills"
	"github.com/vesperhq/vesper/internal/state"
)

// loadConfig reads the config named by the --config flag, falling back to
// defaults when the file is missing.
func loadConfig(cmd *cli.Command) *config.Config {
	if cmd.Bool("debug") {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	configPath := cmd.String("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Warn("config not found, using defaults", "path", configPath, "error", err)
		cfg = config.Default()
	}
	return cfg
}

// runtime bundles everything buildRuntime wires together.
type runtime struct {
	Bus       *events.Bus
	State     *state.State
	Assistant *assistant.Assistant
	Runtime   *skills.Runtime
	Prefs     *prefs.Store
}

// Close tears the runtime down in reverse construction order.
func (r *runtime) Close(ctx context.Context) {
	if r.Runtime != nil {
		r.Runtime.Close(ctx)
	}
	if r.Prefs != nil {
		r.Prefs.Close()
	}
	if r.Bus != nil {
		r.Bus.Close()
	}
}

// buildRuntime constructs the full assistant: bus, state, stores, intent
// resolver, policy, and the skill system.
func buildRuntime(ctx context.Context, cfg *config.Config) (*runtime, error) {
	bus := events.NewBus(cfg.Events.BufferSize)
	st := state.New(bus)

	pf, err := prefs.Open(config.PrefsPath())
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("open preferences: %w", err)
	}

	if err := secrets.GenerateIdentity(secrets.KeyPath()); err != nil {
		pf.Close()
		bus.Close()
		return nil, fmt.Errorf("init secret key: %w", err)
	}
	identity, err := secrets.LoadIdentity(secrets.KeyPath())
	if err != nil {
		pf.Close()
		bus.Close()
		return nil, fmt.Errorf("load secret key: %w", err)
	}
	sec, err := secrets.OpenStore(config.SecretsPath(), identity)
	if err != nil {
		pf.Close()
		bus.Close()
		return nil, fmt.Errorf("open secrets: %w", err)
	}

	resolver, err := buildResolver(ctx, cfg)
	if err != nil {
		pf.Close()
		bus.Close()
		return nil, err
	}

	policy := skills.NewIntentPolicy(cfg.Policy.Allow, cfg.Policy.Deny)

	a := assistant.New(bus, st, resolver, policy, pf, sec)
	registry, skillRuntime := skills.Setup(ctx, cfg, bus, a)
	a.SetRegistry(registry)

	return &runtime{
		Bus:       bus,
		State:     st,
		Assistant: a,
		Runtime:   skillRuntime,
		Prefs:     pf,
	}, nil
}

// buildResolver assembles the intent resolver chain: pattern rules first,
// then the optional embedding matcher.
func buildResolver(ctx context.Context, cfg *config.Config) (nlu.Resolver, error) {
	patterns, err := nlu.LoadRules(cfg.NLU.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("load intent rules: %w", err)
	}

	if !cfg.NLU.Semantic.Enabled {
		return patterns, nil
	}

	embedder, err := nlu.NewEmbedder(ctx, cfg.NLU.Semantic)
	if err != nil {
		slog.Warn("semantic matcher unavailable, using patterns only", "error", err)
		return patterns, nil
	}
	semantic, err := nlu.NewSemanticResolver(ctx, embedder, patterns.Rules(), cfg.NLU.Semantic.Threshold)
	if err != nil {
		slog.Warn("semantic index build failed, using patterns only", "error", err)
		return patterns, nil
	}
	return nlu.NewChain(patterns, semantic), nil
}
