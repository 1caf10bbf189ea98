package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/vesperhq/vesper/internal/events"
	"github.com/vesperhq/vesper/internal/skills"
)

func TestToolName(t *testing.T) {
	cases := map[string]string{
		"time.get":       "time_get",
		"home.lights.on": "home_lights_on",
		"plain":          "plain",
	}
	for intent, want := range cases {
		if got := ToolName(intent); got != want {
			t.Errorf("ToolName(%q) = %q, want %q", intent, got, want)
		}
	}
}

func TestIntentToTool(t *testing.T) {
	tool := intentToTool("time.get", "Tells the time")

	if tool.Name != "time_get" {
		t.Errorf("Name = %q", tool.Name)
	}

	schemaBytes, err := json.Marshal(tool.InputSchema)
	if err != nil {
		t.Fatalf("marshal InputSchema: %v", err)
	}
	var schema map[string]any
	if err := json.Unmarshal(schemaBytes, &schema); err != nil {
		t.Fatalf("unmarshal InputSchema: %v", err)
	}
	if schema["type"] != "object" {
		t.Errorf("schema type = %v", schema["type"])
	}
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("properties = %v", schema["properties"])
	}
	if _, ok := props["slots"]; !ok {
		t.Error("schema missing slots property")
	}
}

type nopSkill struct {
	*skills.Base
}

func (s *nopSkill) Handle(_ context.Context, _ string, _ map[string]any, _ skills.Host) bool {
	return true
}

type nopDispatcher struct{}

func (nopDispatcher) HandleIntent(_ context.Context, intent string, _ map[string]any) skills.Reply {
	return skills.Said("handled " + intent)
}

func TestNewServer(t *testing.T) {
	bus := events.NewBus(8)
	defer bus.Close()

	clock := &nopSkill{Base: skills.NewBase("ClockSkill", "tells time", []string{"time.get", "date.get"})}
	dupe := &nopSkill{Base: skills.NewBase("OtherClock", "also tells time", []string{"time.get"})}
	off := &nopSkill{Base: skills.NewBase("Off", "disabled", []string{"off.intent"})}
	off.SetEnabled(false)

	registry := skills.NewRegistry([]skills.Skill{clock, dupe, off}, nil, nil, bus)

	server := NewServer(registry, nopDispatcher{})
	if server == nil {
		t.Fatal("NewServer returned nil")
	}
}
