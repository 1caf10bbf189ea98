// Package state holds the assistant's live UI state: microphone status,
// processing flag, system health, and input level. It backs GET /api/status.
package state

import (
	"math"
	"sync"

	"github.com/vesperhq/vesper/internal/events"
)

// Mic values.
const (
	MicIdle      = "idle"
	MicListening = "listening"
)

// Snapshot is the JSON shape served by the status endpoint.
type Snapshot struct {
	Mic        string  `json:"mic"`
	Processing bool    `json:"processing"`
	System     string  `json:"system"`
	Level      float64 `json:"level"`
}

// State is the mutable assistant state. Mutations publish state.changed
// events so connected UI clients can refresh without polling.
type State struct {
	mu         sync.RWMutex
	mic        string
	processing bool
	system     string
	level      float64
	bus        *events.Bus
}

// New creates a State in its initial resting configuration.
func New(bus *events.Bus) *State {
	return &State{
		mic:    MicIdle,
		system: "ok",
		bus:    bus,
	}
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Mic:        s.mic,
		Processing: s.processing,
		System:     s.system,
		Level:      s.level,
	}
}

// SetMic updates the microphone status.
func (s *State) SetMic(mic string) {
	s.mu.Lock()
	s.mic = mic
	s.mu.Unlock()
	s.notify()
}

// SetProcessing flips the processing flag.
func (s *State) SetProcessing(processing bool) {
	s.mu.Lock()
	s.processing = processing
	s.mu.Unlock()
	s.notify()
}

// SetSystem updates the system health string.
func (s *State) SetSystem(system string) {
	s.mu.Lock()
	s.system = system
	s.mu.Unlock()
	s.notify()
}

// SetLevel updates the input level, clamped to [0, 1].
func (s *State) SetLevel(level float64) {
	if math.IsNaN(level) {
		level = 0
	}
	level = math.Max(0, math.Min(1, level))

	s.mu.Lock()
	s.level = level
	s.mu.Unlock()
	s.notify()
}

func (s *State) notify() {
	if s.bus == nil {
		return
	}
	snap := s.Snapshot()
	s.bus.Publish(events.NewEvent(events.EventStateChanged, events.SourceAssistant, map[string]any{
		"mic":        snap.Mic,
		"processing": snap.Processing,
		"system":     snap.System,
		"level":      snap.Level,
	}))
}
