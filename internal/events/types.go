package events

// EventType represents the type of event.
type EventType string

const (
	// Command pipeline
	EventCommandReceived EventType = "command.received"
	EventIntentResolved  EventType = "intent.resolved"
	EventIntentUnhandled EventType = "intent.unhandled"
	EventIntentDenied    EventType = "intent.denied"

	// Skill lifecycle
	EventSkillInvoked   EventType = "skill.invoked"
	EventSkillCompleted EventType = "skill.completed"
	EventSkillFailed    EventType = "skill.failed"
	EventSkillToggled   EventType = "skill.toggled"

	// Output toward the UI / TTS layer
	EventSpeechRequest EventType = "speech.request"
	EventDisplay       EventType = "display"

	// Assistant state
	EventStateChanged EventType = "state.changed"

	// Automations
	EventScheduleTrigger EventType = "schedule.trigger"
)

// EventSource identifies the component that emitted an event.
type EventSource string

const (
	SourceGateway   EventSource = "gateway"
	SourceAssistant EventSource = "assistant"
	SourceRegistry  EventSource = "registry"
	SourceSkill     EventSource = "skill"
	SourceScheduler EventSource = "scheduler"
	SourceCLI       EventSource = "cli"
)
