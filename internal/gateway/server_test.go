package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vesperhq/vesper/internal/events"
	"github.com/vesperhq/vesper/internal/skills"
	"github.com/vesperhq/vesper/internal/state"
)

type stubSkill struct {
	*skills.Base
}

func (s *stubSkill) Handle(_ context.Context, _ string, _ map[string]any, _ skills.Host) bool {
	return true
}

type stubCommander struct {
	registry *skills.Registry
	toggled  map[string]bool
	lastText string
}

func (c *stubCommander) HandleText(_ context.Context, text string) skills.Reply {
	c.lastText = text
	if strings.Contains(text, "time") {
		return skills.Said("It's 3:04 PM.")
	}
	return skills.Reply{OK: false, Message: "Sorry, I didn't understand that.", DisplayType: skills.DisplayWarning}
}

func (c *stubCommander) ToggleSkill(name string, enabled bool) error {
	if c.toggled == nil {
		c.toggled = make(map[string]bool)
	}
	c.toggled[name] = enabled
	return nil
}

func (c *stubCommander) Registry() *skills.Registry { return c.registry }

func newTestServer(t *testing.T) (*Server, *stubCommander, *events.Bus) {
	t.Helper()

	bus := events.NewBus(16)
	t.Cleanup(func() { bus.Close() })

	clock := &stubSkill{Base: skills.NewBase("ClockSkill", "tells time", []string{"time.get"})}
	cmd := &stubCommander{
		registry: skills.NewRegistry([]skills.Skill{clock}, map[string]string{"broken": "bad manifest"}, nil, bus),
	}
	return NewServer(bus, state.New(bus), cmd, "127.0.0.1", 0), cmd, bus
}

func TestHandleHealth(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestHandleCommand(t *testing.T) {
	s, cmd, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/command", strings.NewReader(`{"text": "what time is it"}`))
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var reply skills.Reply
	if err := json.NewDecoder(rec.Body).Decode(&reply); err != nil {
		t.Fatal(err)
	}
	if !reply.OK || reply.Message != "It's 3:04 PM." {
		t.Errorf("reply = %+v", reply)
	}
	if cmd.lastText != "what time is it" {
		t.Errorf("lastText = %q", cmd.lastText)
	}
}

func TestHandleCommand_BadBody(t *testing.T) {
	s, _, _ := newTestServer(t)

	for _, body := range []string{"", "{}", "not json"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/command", strings.NewReader(body))
		s.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestHandleStatus(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		state.Snapshot
		Skills skills.Status `json:"skills"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Skills.Loaded != 1 || body.Skills.Failed != 1 {
		t.Errorf("skills status = %+v", body.Skills)
	}
	if body.Mic != state.MicIdle {
		t.Errorf("mic = %q, want %q", body.Mic, state.MicIdle)
	}
}

func TestHandleSkills(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/skills", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Skills   map[string]skills.Info `json:"skills"`
		Failures map[string]string      `json:"failures"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	info, ok := body.Skills["ClockSkill"]
	if !ok || !info.Enabled || len(info.Intents) != 1 {
		t.Errorf("skills = %+v", body.Skills)
	}
	if body.Failures["broken"] == "" {
		t.Errorf("failures = %v", body.Failures)
	}
}

func TestHandleToggleSkill(t *testing.T) {
	s, cmd, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/skills/ClockSkill", strings.NewReader(`{"enabled": false}`))
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if v, ok := cmd.toggled["ClockSkill"]; !ok || v {
		t.Errorf("toggled = %v", cmd.toggled)
	}
}

func TestHandleEvents(t *testing.T) {
	s, _, bus := newTestServer(t)

	bus.Publish(events.NewEvent(events.EventCommandReceived, events.SourceGateway, map[string]any{"text": "hi"}))
	bus.Publish(events.NewEvent(events.EventSpeechRequest, events.SourceAssistant, map[string]any{"text": "hello"}))

	// History fills asynchronously.
	deadline := time.Now().Add(2 * time.Second)
	for len(bus.History(0)) < 2 {
		if time.Now().After(deadline) {
			t.Fatal("events never reached history")
		}
		time.Sleep(5 * time.Millisecond)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events?limit=1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var result []map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result) != 1 {
		t.Fatalf("events = %v, want 1", result)
	}
	if result[0]["type"] != string(events.EventSpeechRequest) {
		t.Errorf("event type = %v, want newest", result[0]["type"])
	}
}
