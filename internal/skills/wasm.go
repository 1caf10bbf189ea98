package skills

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	extism "github.com/extism/go-sdk"
)

// wasmRequest is the JSON input passed to the skill's handle export.
type wasmRequest struct {
	Intent string         `json:"intent"`
	Slots  map[string]any `json:"slots"`
}

// WasmSkill adapts an Extism WASM module to the Skill capability set.
// The module's export receives {"intent": ..., "slots": ...} and returns
// a Reply JSON object.
type WasmSkill struct {
	*Base
	plugin *extism.Plugin
	fn     string
	mu     sync.Mutex // extism plugin calls are not concurrency-safe
}

// Handle invokes the WASM export for a resolved intent. Module traps and
// decode failures are absorbed into a false return; they never escape to
// the dispatcher.
func (s *WasmSkill) Handle(_ context.Context, intent string, slots map[string]any, host Host) bool {
	input, err := json.Marshal(wasmRequest{Intent: intent, Slots: slots})
	if err != nil {
		slog.Error("wasm skill: marshal request", "skill", s.Name(), "intent", intent, "error", err)
		return false
	}

	s.mu.Lock()
	exit, output, err := s.plugin.Call(s.fn, input)
	s.mu.Unlock()
	if err != nil {
		slog.Error("wasm skill: call failed", "skill", s.Name(), "intent", intent, "error", err)
		return false
	}

	if len(output) == 0 {
		return exit == 0
	}

	var reply Reply
	if err := json.Unmarshal(output, &reply); err != nil {
		slog.Warn("wasm skill: invalid reply", "skill", s.Name(), "intent", intent, "error", err)
		return false
	}
	if reply.DisplayType == "" {
		reply.DisplayType = DisplayNone
	}

	if host != nil {
		host.Show(reply)
	}
	return reply.OK
}

var _ Skill = (*WasmSkill)(nil)
