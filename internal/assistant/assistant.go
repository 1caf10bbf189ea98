// Package assistant wires the command pipeline: raw text comes in, the
// resolver names an intent, the policy gates it, and the skill registry
// dispatches it. The assistant is also the host handle every skill holds.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/vesperhq/vesper/internal/events"
	"github.com/vesperhq/vesper/internal/nlu"
	"github.com/vesperhq/vesper/internal/prefs"
	"github.com/vesperhq/vesper/internal/secrets"
	"github.com/vesperhq/vesper/internal/skills"
	"github.com/vesperhq/vesper/internal/state"
)

// Assistant owns the command pipeline and implements skills.Host. Commands
// are serialized: at most one dispatch runs at a time, so skill handlers
// never race each other.
type Assistant struct {
	bus      *events.Bus
	state    *state.State
	resolver nlu.Resolver
	policy   *skills.IntentPolicy
	prefs    *prefs.Store
	secrets  *secrets.Store

	registry *skills.Registry

	mu sync.Mutex // serializes dispatch

	cmu       sync.Mutex // guards collector; skills may Say outside a dispatch
	collector *replyCollector
}

// replyCollector gathers Say/Show calls made during one dispatch.
type replyCollector struct {
	said  []string
	reply *skills.Reply
}

// New creates an assistant without a registry; skills are loaded against
// this host and attached with SetRegistry.
func New(bus *events.Bus, st *state.State, resolver nlu.Resolver, policy *skills.IntentPolicy, pf *prefs.Store, sec *secrets.Store) *Assistant {
	return &Assistant{
		bus:      bus,
		state:    st,
		resolver: resolver,
		policy:   policy,
		prefs:    pf,
		secrets:  sec,
	}
}

// SetRegistry attaches the skill registry after loading and applies any
// persisted per-skill enable preferences.
func (a *Assistant) SetRegistry(r *skills.Registry) {
	a.registry = r
	a.applySkillPrefs()
}

// Registry returns the attached skill registry.
func (a *Assistant) Registry() *skills.Registry { return a.registry }

// applySkillPrefs restores skill enable state persisted from earlier runs.
func (a *Assistant) applySkillPrefs() {
	if a.prefs == nil || a.registry == nil {
		return
	}
	for _, s := range a.registry.Skills() {
		if enabled, ok := a.prefs.SkillEnabled(s.Name()); ok {
			a.registry.EnableSkill(s.Name(), enabled)
		}
	}
}

// ToggleSkill flips a skill's enable flag and persists it. Unknown names
// are ignored by the registry; the preference is still recorded so a
// later-installed skill of that name starts in the requested state.
func (a *Assistant) ToggleSkill(name string, enabled bool) error {
	if a.registry != nil {
		a.registry.EnableSkill(name, enabled)
	}
	if a.prefs == nil {
		return nil
	}
	return a.prefs.SetSkillEnabled(name, enabled)
}

// HandleText runs the full pipeline for one raw command and returns the
// reply to show the user.
func (a *Assistant) HandleText(ctx context.Context, text string) skills.Reply {
	commandID := uuid.New().String()
	a.publish(events.EventCommandReceived, map[string]any{"command_id": commandID, "text": text})

	res, err := a.resolver.Resolve(ctx, text)
	if err != nil {
		slog.Error("intent resolution failed", "error", err)
		return skills.ErrorReply("Something went wrong understanding that.")
	}
	if res == nil {
		a.publish(events.EventIntentUnhandled, map[string]any{"command_id": commandID, "text": text})
		return skills.Reply{
			OK:          false,
			Message:     "Sorry, I didn't understand that.",
			DisplayType: skills.DisplayWarning,
		}
	}

	a.publish(events.EventIntentResolved, map[string]any{
		"command_id": commandID,
		"text":       text,
		"intent":     res.Intent,
		"score":      res.Score,
	})
	return a.HandleIntent(ctx, res.Intent, res.Slots)
}

// HandleIntent dispatches an already-resolved intent. The scheduler and
// the CLI call this directly, skipping language resolution.
func (a *Assistant) HandleIntent(ctx context.Context, intent string, slots map[string]any) skills.Reply {
	if !a.policy.Allowed(intent) {
		slog.Warn("intent denied by policy", "intent", intent)
		a.publish(events.EventIntentDenied, map[string]any{"intent": intent})
		return skills.Reply{
			OK:          false,
			Message:     "That action is not allowed.",
			DisplayType: skills.DisplayWarning,
		}
	}
	if a.registry == nil {
		return skills.ErrorReply("No skills are loaded.")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != nil {
		a.state.SetProcessing(true)
		defer a.state.SetProcessing(false)
	}

	a.cmu.Lock()
	a.collector = &replyCollector{}
	a.cmu.Unlock()

	handled := a.registry.HandleIntent(ctx, intent, slots)

	a.cmu.Lock()
	collected := a.collector
	a.collector = nil
	a.cmu.Unlock()

	return buildReply(intent, handled, collected)
}

// buildReply folds collected Say/Show output into the command reply.
func buildReply(intent string, handled bool, c *replyCollector) skills.Reply {
	if c.reply != nil {
		r := *c.reply
		if r.Message == "" && len(c.said) > 0 {
			r.Message = c.said[0]
		}
		return r
	}
	if !handled {
		return skills.Reply{
			OK:          false,
			Message:     fmt.Sprintf("I can't handle %q right now.", intent),
			DisplayType: skills.DisplayWarning,
		}
	}
	if len(c.said) > 0 {
		return skills.Said(joinSaid(c.said))
	}
	return skills.Said("Done.")
}

func joinSaid(said []string) string {
	out := said[0]
	for _, s := range said[1:] {
		out += " " + s
	}
	return out
}

// --- skills.Host ---

// Say queues text for speech and, during a dispatch, for the command reply.
func (a *Assistant) Say(text string) {
	a.cmu.Lock()
	if a.collector != nil {
		a.collector.said = append(a.collector.said, text)
	}
	a.cmu.Unlock()
	a.publish(events.EventSpeechRequest, map[string]any{"text": text})
}

// Show attaches a full reply to the current command and forwards the
// display block to the UI.
func (a *Assistant) Show(reply skills.Reply) {
	a.cmu.Lock()
	if a.collector != nil {
		a.collector.reply = &reply
	}
	a.cmu.Unlock()
	if reply.DisplayType != skills.DisplayNone && reply.DisplayType != "" {
		a.publish(events.EventDisplay, map[string]any{
			"display_type":       string(reply.DisplayType),
			"display_data":       reply.DisplayData,
			"message":            reply.Message,
			"auto_close_seconds": reply.AutoCloseSeconds,
		})
	}
}

// Publish emits a skill-sourced event on the bus.
func (a *Assistant) Publish(eventType string, payload map[string]any) {
	if a.bus == nil {
		return
	}
	a.bus.Publish(events.NewEvent(events.EventType(eventType), events.SourceSkill, payload))
}

// Secret resolves a named secret from the encrypted store.
func (a *Assistant) Secret(name string) (string, error) {
	if a.secrets == nil {
		return "", fmt.Errorf("no secret store configured")
	}
	return a.secrets.Get(name)
}

// Pref reads a preference.
func (a *Assistant) Pref(key, fallback string) string {
	if a.prefs == nil {
		return fallback
	}
	return a.prefs.Get(key, fallback)
}

// SetPref persists a preference.
func (a *Assistant) SetPref(key, value string) error {
	if a.prefs == nil {
		return fmt.Errorf("no preference store configured")
	}
	return a.prefs.Set(key, value)
}

func (a *Assistant) publish(t events.EventType, payload map[string]any) {
	if a.bus == nil {
		return
	}
	a.bus.Publish(events.NewEvent(t, events.SourceAssistant, payload))
}

var _ skills.Host = (*Assistant)(nil)
