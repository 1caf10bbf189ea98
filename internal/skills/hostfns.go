package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	extism "github.com/extism/go-sdk"

	"github.com/vesperhq/vesper/internal/events"
)

// KVStore is a per-skill in-memory key-value store.
type KVStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewKVStore creates a new empty KV store.
func NewKVStore() *KVStore {
	return &KVStore{data: make(map[string][]byte)}
}

// Get returns the value for a key, or nil if not found.
func (s *KVStore) Get(key string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[key]
}

// Set stores a value for a key.
func (s *KVStore) Set(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

type hostLogMessage struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

type hostKVRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type hostEmitEvent struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// newHostFunctions creates the standard Vesper host functions for a WASM
// skill. All functions live in the "vesper" namespace. Secret access is
// limited to the names granted by the skill's manifest capabilities.
func newHostFunctions(m *Manifest, bus *events.Bus, kv *KVStore, host Host) []extism.HostFunction {
	var fns []extism.HostFunction

	// vesper.log — structured logging from the skill
	logFn := extism.NewHostFunctionWithStack(
		"log",
		func(_ context.Context, p *extism.CurrentPlugin, stack []uint64) {
			input, err := p.ReadBytes(stack[0])
			if err != nil {
				slog.Error("host: failed to read log input", "error", err)
				return
			}
			var msg hostLogMessage
			if err := json.Unmarshal(input, &msg); err != nil {
				slog.Warn("host: invalid log message", "raw", string(input))
				return
			}
			switch msg.Level {
			case "debug":
				slog.Debug("skill", "name", m.Name, "msg", msg.Message)
			case "warn":
				slog.Warn("skill", "name", m.Name, "msg", msg.Message)
			case "error":
				slog.Error("skill", "name", m.Name, "msg", msg.Message)
			default:
				slog.Info("skill", "name", m.Name, "msg", msg.Message)
			}
		},
		[]extism.ValueType{extism.ValueTypePTR},
		nil,
	)
	logFn.SetNamespace("vesper")
	fns = append(fns, logFn)

	// vesper.kv_get — read from the per-skill KV store
	kvGetFn := extism.NewHostFunctionWithStack(
		"kv_get",
		func(_ context.Context, p *extism.CurrentPlugin, stack []uint64) {
			key, err := p.ReadString(stack[0])
			if err != nil {
				slog.Error("host: kv_get read key", "error", err)
				stack[0] = 0
				return
			}
			value := kv.Get(key)
			if value == nil {
				value = []byte("{}")
			}
			offset, err := p.WriteBytes(value)
			if err != nil {
				slog.Error("host: kv_get write result", "error", err)
				stack[0] = 0
				return
			}
			stack[0] = offset
		},
		[]extism.ValueType{extism.ValueTypePTR},
		[]extism.ValueType{extism.ValueTypePTR},
	)
	kvGetFn.SetNamespace("vesper")
	fns = append(fns, kvGetFn)

	// vesper.kv_set — write to the per-skill KV store
	kvSetFn := extism.NewHostFunctionWithStack(
		"kv_set",
		func(_ context.Context, p *extism.CurrentPlugin, stack []uint64) {
			input, err := p.ReadBytes(stack[0])
			if err != nil {
				slog.Error("host: kv_set read input", "error", err)
				return
			}
			var req hostKVRequest
			if err := json.Unmarshal(input, &req); err != nil {
				slog.Error("host: kv_set parse", "error", err)
				return
			}
			kv.Set(req.Key, []byte(req.Value))
		},
		[]extism.ValueType{extism.ValueTypePTR},
		nil,
	)
	kvSetFn.SetNamespace("vesper")
	fns = append(fns, kvSetFn)

	// vesper.emit_event — publish an event on the bus
	emitFn := extism.NewHostFunctionWithStack(
		"emit_event",
		func(_ context.Context, p *extism.CurrentPlugin, stack []uint64) {
			input, err := p.ReadBytes(stack[0])
			if err != nil {
				slog.Error("host: emit_event read", "error", err)
				return
			}
			var ev hostEmitEvent
			if err := json.Unmarshal(input, &ev); err != nil {
				slog.Error("host: emit_event parse", "error", err)
				return
			}
			if bus != nil {
				bus.Publish(events.NewEvent(events.EventType(ev.Type), events.SourceSkill, ev.Payload))
			}
		},
		[]extism.ValueType{extism.ValueTypePTR},
		nil,
	)
	emitFn.SetNamespace("vesper")
	fns = append(fns, emitFn)

	// vesper.get_config — read a skill config value
	getConfigFn := extism.NewHostFunctionWithStack(
		"get_config",
		func(_ context.Context, p *extism.CurrentPlugin, stack []uint64) {
			key, err := p.ReadString(stack[0])
			if err != nil {
				slog.Error("host: get_config read key", "error", err)
				stack[0] = 0
				return
			}
			offset, err := p.WriteString(m.Config[key])
			if err != nil {
				slog.Error("host: get_config write result", "error", err)
				stack[0] = 0
				return
			}
			stack[0] = offset
		},
		[]extism.ValueType{extism.ValueTypePTR},
		[]extism.ValueType{extism.ValueTypePTR},
	)
	getConfigFn.SetNamespace("vesper")
	fns = append(fns, getConfigFn)

	// vesper.get_secret — read a secret granted by the manifest
	getSecretFn := extism.NewHostFunctionWithStack(
		"get_secret",
		func(_ context.Context, p *extism.CurrentPlugin, stack []uint64) {
			name, err := p.ReadString(stack[0])
			if err != nil {
				slog.Error("host: get_secret read name", "error", err)
				stack[0] = 0
				return
			}
			value, err := resolveSkillSecret(m, host, name)
			if err != nil {
				slog.Warn("host: get_secret denied", "skill", m.Name, "secret", name, "error", err)
				value = ""
			}
			offset, err := p.WriteString(value)
			if err != nil {
				slog.Error("host: get_secret write result", "error", err)
				stack[0] = 0
				return
			}
			stack[0] = offset
		},
		[]extism.ValueType{extism.ValueTypePTR},
		[]extism.ValueType{extism.ValueTypePTR},
	)
	getSecretFn.SetNamespace("vesper")
	fns = append(fns, getSecretFn)

	return fns
}

// resolveSkillSecret enforces the manifest's secret grants before reading
// from the host's secret store.
func resolveSkillSecret(m *Manifest, host Host, name string) (string, error) {
	if host == nil {
		return "", fmt.Errorf("no host attached")
	}
	if !slices.Contains(m.Capabilities.Secrets, name) {
		return "", fmt.Errorf("secret %q not granted to skill %q", name, m.Name)
	}
	return host.Secret(name)
}
