// Package skills provides the Vesper skill system: the capability contract
// every skill implements, the loader that discovers native and WASM skill
// modules, and the registry that routes resolved intents to skill instances.
package skills

import (
	"context"
	"sync/atomic"
)

// Skill is the capability set a conforming skill exposes to the registry.
// The registry treats every skill uniformly: declared intents, an enabled
// flag, a description, and a handler.
type Skill interface {
	// Name identifies the skill; it comes from the concrete implementation
	// (native skill type or WASM manifest name).
	Name() string

	// Description returns human-readable text about the skill.
	Description() string

	// Intents returns the ordered intent identifiers this skill handles.
	// Fixed after construction.
	Intents() []string

	// CanHandle reports whether intent is in the skill's declared intents.
	CanHandle(intent string) bool

	// Enabled reports the runtime enable flag. Default true.
	Enabled() bool

	// SetEnabled flips the enable flag. Safe to call concurrently with
	// dispatch reads.
	SetEnabled(enabled bool)

	// Handle performs the skill's action for a resolved intent. The host
	// handle is passed on every call; skills that captured it at
	// construction simply ignore the parameter. The return value means
	// "claimed and attempted without failing" — it does not promise the
	// side effect fully succeeded.
	Handle(ctx context.Context, intent string, slots map[string]any, host Host) bool
}

// Host is the opaque capability handle the assistant passes to every skill,
// once at construction and again per call. The registry never interprets
// it, only forwards it.
type Host interface {
	// Say queues text for speech output and the command reply.
	Say(text string)

	// Show attaches a full reply (message + visual display) to the
	// current command.
	Show(reply Reply)

	// Publish emits an event on the assistant's bus.
	Publish(eventType string, payload map[string]any)

	// Secret resolves a named secret from the encrypted store.
	Secret(name string) (string, error)

	// Pref reads a preference, returning fallback when unset.
	Pref(key, fallback string) string

	// SetPref persists a preference.
	SetPref(key, value string) error
}

// Base carries the common skill fields: name, description, declared
// intents, and the atomic enabled flag. Concrete skills embed *Base.
type Base struct {
	name        string
	description string
	intents     []string
	enabled     atomic.Bool
}

// NewBase creates an enabled Base with the given identity.
func NewBase(name, description string, intents []string) *Base {
	b := &Base{name: name, description: description, intents: intents}
	b.enabled.Store(true)
	return b
}

// Name returns the skill name.
func (b *Base) Name() string { return b.name }

// Description returns the skill description.
func (b *Base) Description() string { return b.description }

// Intents returns the declared intents in declaration order.
func (b *Base) Intents() []string { return b.intents }

// CanHandle reports whether intent is declared by this skill.
func (b *Base) CanHandle(intent string) bool {
	for _, i := range b.intents {
		if i == intent {
			return true
		}
	}
	return false
}

// Enabled reports the enable flag.
func (b *Base) Enabled() bool { return b.enabled.Load() }

// SetEnabled flips the enable flag atomically.
func (b *Base) SetEnabled(enabled bool) { b.enabled.Store(enabled) }
