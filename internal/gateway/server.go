// Package gateway exposes the assistant over HTTP and WebSocket: command
// submission, skill management, state and event inspection.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vesperhq/vesper/internal/events"
	"github.com/vesperhq/vesper/internal/gateway/ws"
	"github.com/vesperhq/vesper/internal/skills"
	"github.com/vesperhq/vesper/internal/state"
)

// Commander is the slice of the assistant the gateway drives.
type Commander interface {
	HandleText(ctx context.Context, text string) skills.Reply
	ToggleSkill(name string, enabled bool) error
	Registry() *skills.Registry
}

// Server is the Vesper gateway HTTP server.
type Server struct {
	httpServer *http.Server
	hub        *ws.Hub
	bus        *events.Bus
	commander  Commander
	state      *state.State
}

// NewServer creates a gateway server bound to host:port.
func NewServer(bus *events.Bus, st *state.State, commander Commander, host string, port int) *Server {
	hub := ws.NewHub(bus, commander)

	s := &Server{
		hub:       hub,
		bus:       bus,
		commander: commander,
		state:     st,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/status", s.handleStatus)
	r.Post("/api/command", s.handleCommand)
	r.Get("/api/skills", s.handleSkills)
	r.Post("/api/skills/{name}", s.handleToggleSkill)
	r.Get("/api/events", s.handleEvents)
	r.Get("/api/ws", hub.ServeWS)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", host, port),
		Handler: r,
	}
	return s
}

// Handler returns the HTTP handler, for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start begins listening. It blocks until the server is stopped.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	slog.Info("Vesper gateway listening", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatus reports the UI state snapshot plus the skill system health.
// The mic/processing/system/level fields stay at the top level; UIs read
// them directly.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := struct {
		state.Snapshot
		Skills skills.Status `json:"skills"`
	}{}
	if s.state != nil {
		resp.Snapshot = s.state.Snapshot()
	}
	if reg := s.commander.Registry(); reg != nil {
		resp.Skills = reg.SkillStatus()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCommand runs one text command through the assistant pipeline and
// returns the reply.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		http.Error(w, "body must be {\"text\": \"...\"}", http.StatusBadRequest)
		return
	}

	reply := s.commander.HandleText(r.Context(), req.Text)
	writeJSON(w, http.StatusOK, reply)
}

// SkillList is the /api/skills response body.
type SkillList struct {
	Skills   map[string]skills.Info `json:"skills"`
	Failures map[string]string      `json:"failures"`
}

func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	reg := s.commander.Registry()
	if reg == nil {
		http.Error(w, "skills not loaded", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, SkillList{
		Skills:   reg.SkillInfo(),
		Failures: reg.Failures(),
	})
}

// handleToggleSkill enables or disables one skill by name. Unknown names
// succeed without effect on the registry; the preference is recorded.
func (s *Server) handleToggleSkill(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "body must be {\"enabled\": true|false}", http.StatusBadRequest)
		return
	}

	if err := s.commander.ToggleSkill(name, req.Enabled); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"skill": name, "enabled": req.Enabled})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limitStr := r.URL.Query().Get("limit")
	limit := 50
	if limitStr != "" {
		fmt.Sscanf(limitStr, "%d", &limit)
	}

	history := s.bus.History(limit)

	type eventJSON struct {
		ID        string             `json:"id"`
		Type      string             `json:"type"`
		Timestamp string             `json:"timestamp"`
		Source    events.EventSource `json:"source"`
		Payload   map[string]any     `json:"payload"`
	}

	result := make([]eventJSON, len(history))
	for i, e := range history {
		result[i] = eventJSON{
			ID:        e.ID,
			Type:      string(e.Type),
			Timestamp: e.Timestamp.Format(time.RFC3339Nano),
			Source:    e.Source,
			Payload:   e.Payload,
		}
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
