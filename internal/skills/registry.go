package skills

import (
	"context"
	"log/slog"

	"github.com/vesperhq/vesper/internal/events"
)

// Registry owns the loaded skill instances and routes intents to them.
// The skill list is fixed after construction (insertion order = discovery
// order); the per-skill enabled flags are the only runtime mutation.
// Dispatch assumes external serialization: at most one HandleIntent call
// in flight at a time.
type Registry struct {
	skills []Skill
	failed map[string]string
	host   Host
	bus    *events.Bus
}

// Status is the operational health payload for the skill system.
type Status struct {
	Loaded        int               `json:"loaded"`
	Enabled       int               `json:"enabled"`
	Disabled      int               `json:"disabled"`
	Failed        int               `json:"failed"`
	TotalIntents  int               `json:"total_intents"`
	UniqueIntents int               `json:"unique_intents"`
	Failures      map[string]string `json:"failures"`
}

// Info describes a single loaded skill for diagnostics.
type Info struct {
	Enabled     bool     `json:"enabled"`
	Intents     []string `json:"intents"`
	Description string   `json:"description"`
}

// NewRegistry creates a registry over the loader's output. Every skill in
// the list completed discovery and construction; anything that failed a
// step appears only in failures.
func NewRegistry(loaded []Skill, failures map[string]string, host Host, bus *events.Bus) *Registry {
	if failures == nil {
		failures = make(map[string]string)
	}
	return &Registry{
		skills: loaded,
		failed: failures,
		host:   host,
		bus:    bus,
	}
}

// Skills returns all loaded skills in discovery order.
func (r *Registry) Skills() []Skill { return r.skills }

// Failures returns the per-module load failure map.
func (r *Registry) Failures() map[string]string { return r.failed }

// SkillForIntent returns the first enabled skill, in discovery order, whose
// declared intents include intent. First match wins: a skill discovered
// earlier always shadows a later one claiming the same intent.
func (r *Registry) SkillForIntent(intent string) Skill {
	for _, s := range r.skills {
		if s.Enabled() && s.CanHandle(intent) {
			return s
		}
	}
	return nil
}

// EnableSkill flips the enabled flag on the first skill whose name matches.
// Unknown names are silently ignored; callers rely on this for optional or
// removed skills referenced by name.
func (r *Registry) EnableSkill(name string, enabled bool) {
	for _, s := range r.skills {
		if s.Name() == name {
			s.SetEnabled(enabled)
			slog.Info("skill toggled", "skill", name, "enabled", enabled)
			r.publish(events.EventSkillToggled, map[string]any{
				"skill":   name,
				"enabled": enabled,
			})
			return
		}
	}
}

// AllIntents returns every enabled skill's declared intents, concatenated
// in discovery order. Duplicates are preserved: the result reflects what
// dispatch would actually try.
func (r *Registry) AllIntents() []string {
	var intents []string
	for _, s := range r.skills {
		if s.Enabled() {
			intents = append(intents, s.Intents()...)
		}
	}
	return intents
}

// EnabledSkills returns the enabled skills in discovery order.
func (r *Registry) EnabledSkills() []Skill {
	var enabled []Skill
	for _, s := range r.skills {
		if s.Enabled() {
			enabled = append(enabled, s)
		}
	}
	return enabled
}

// SkillInfo returns per-skill diagnostics keyed by skill name.
func (r *Registry) SkillInfo() map[string]Info {
	info := make(map[string]Info, len(r.skills))
	for _, s := range r.skills {
		info[s.Name()] = Info{
			Enabled:     s.Enabled(),
			Intents:     s.Intents(),
			Description: s.Description(),
		}
	}
	return info
}

// SkillStatus returns counts and the failure map for the health endpoint.
func (r *Registry) SkillStatus() Status {
	st := Status{
		Loaded:   len(r.skills),
		Failed:   len(r.failed),
		Failures: r.failed,
	}

	seen := make(map[string]struct{})
	for _, s := range r.skills {
		if !s.Enabled() {
			st.Disabled++
			continue
		}
		st.Enabled++
		for _, intent := range s.Intents() {
			st.TotalIntents++
			seen[intent] = struct{}{}
		}
	}
	st.UniqueIntents = len(seen)
	return st
}

// HandleIntent resolves intent to a skill and invokes it. It returns false
// when no enabled skill claims the intent (a normal outcome, not an error)
// or when the handler fails; a misbehaving handler never crashes the
// process.
func (r *Registry) HandleIntent(ctx context.Context, intent string, slots map[string]any) bool {
	skill := r.SkillForIntent(intent)
	if skill == nil {
		slog.Debug("no enabled skill claims intent", "intent", intent)
		r.publish(events.EventIntentUnhandled, map[string]any{"intent": intent})
		return false
	}
	return r.invoke(ctx, skill, intent, slots)
}

func (r *Registry) invoke(ctx context.Context, skill Skill, intent string, slots map[string]any) (handled bool) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("skill handler panicked", "skill", skill.Name(), "intent", intent, "panic", rec)
			r.publish(events.EventSkillFailed, map[string]any{
				"skill":  skill.Name(),
				"intent": intent,
			})
			handled = false
		}
	}()

	r.publish(events.EventSkillInvoked, map[string]any{
		"skill":  skill.Name(),
		"intent": intent,
	})

	handled = skill.Handle(ctx, intent, slots, r.host)

	r.publish(events.EventSkillCompleted, map[string]any{
		"skill":   skill.Name(),
		"intent":  intent,
		"handled": handled,
	})
	return handled
}

func (r *Registry) publish(t events.EventType, payload map[string]any) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(events.NewEvent(t, events.SourceRegistry, payload))
}
