package skills

import (
	"context"
	"testing"
)

// fakeSkill is a test skill with a scriptable handler.
type fakeSkill struct {
	*Base
	handle func(intent string, slots map[string]any, host Host) bool
	calls  int
}

func newFakeSkill(name string, intents []string, handle func(string, map[string]any, Host) bool) *fakeSkill {
	return &fakeSkill{
		Base:   NewBase(name, "test skill", intents),
		handle: handle,
	}
}

func (s *fakeSkill) Handle(_ context.Context, intent string, slots map[string]any, host Host) bool {
	s.calls++
	if s.handle == nil {
		return true
	}
	return s.handle(intent, slots, host)
}

// fakeHost records what skills said and showed.
type fakeHost struct {
	said    []string
	shown   []Reply
	prefs   map[string]string
	secrets map[string]string
}

func newFakeHost() *fakeHost {
	return &fakeHost{prefs: make(map[string]string), secrets: make(map[string]string)}
}

func (h *fakeHost) Say(text string)                   { h.said = append(h.said, text) }
func (h *fakeHost) Show(reply Reply)                  { h.shown = append(h.shown, reply) }
func (h *fakeHost) Publish(string, map[string]any)    {}
func (h *fakeHost) Secret(name string) (string, error) {
	return h.secrets[name], nil
}
func (h *fakeHost) Pref(key, fallback string) string {
	if v, ok := h.prefs[key]; ok {
		return v
	}
	return fallback
}
func (h *fakeHost) SetPref(key, value string) error {
	h.prefs[key] = value
	return nil
}

func TestSkillForIntent_FirstMatchWins(t *testing.T) {
	a := newFakeSkill("A", []string{"greet"}, nil)
	b := newFakeSkill("B", []string{"greet"}, nil)
	r := NewRegistry([]Skill{a, b}, nil, newFakeHost(), nil)

	got := r.SkillForIntent("greet")
	if got == nil || got.Name() != "A" {
		t.Fatalf("SkillForIntent = %v, want A", got)
	}

	if !r.HandleIntent(context.Background(), "greet", nil) {
		t.Fatal("HandleIntent = false, want true")
	}
	if a.calls != 1 || b.calls != 0 {
		t.Errorf("calls A=%d B=%d, want A=1 B=0", a.calls, b.calls)
	}
}

func TestSkillForIntent_DisabledFallsThrough(t *testing.T) {
	a := newFakeSkill("A", []string{"greet"}, nil)
	b := newFakeSkill("B", []string{"greet"}, nil)
	r := NewRegistry([]Skill{a, b}, nil, newFakeHost(), nil)

	r.EnableSkill("A", false)

	got := r.SkillForIntent("greet")
	if got == nil || got.Name() != "B" {
		t.Fatalf("SkillForIntent = %v, want B", got)
	}

	// Re-enabling restores the original precedence.
	r.EnableSkill("A", true)
	got = r.SkillForIntent("greet")
	if got == nil || got.Name() != "A" {
		t.Fatalf("SkillForIntent after re-enable = %v, want A", got)
	}
}

func TestSkillForIntent_NoMatch(t *testing.T) {
	a := newFakeSkill("A", []string{"greet"}, nil)
	r := NewRegistry([]Skill{a}, nil, newFakeHost(), nil)

	if got := r.SkillForIntent("unknown.intent"); got != nil {
		t.Errorf("SkillForIntent = %v, want nil", got)
	}
	if r.HandleIntent(context.Background(), "unknown.intent", nil) {
		t.Error("HandleIntent = true, want false")
	}
	if len(r.Failures()) != 0 {
		t.Errorf("Failures len = %d, want 0 (unclaimed intent is not a failure)", len(r.Failures()))
	}
}

func TestEnableSkill_UnknownNameIsNoOp(t *testing.T) {
	a := newFakeSkill("A", []string{"greet"}, nil)
	r := NewRegistry([]Skill{a}, nil, newFakeHost(), nil)

	r.EnableSkill("ghost", false)

	if !a.Enabled() {
		t.Error("existing skill flipped by unknown-name toggle")
	}
	if got := r.SkillStatus(); got.Loaded != 1 || got.Enabled != 1 {
		t.Errorf("status = %+v after no-op toggle", got)
	}
}

func TestAllIntents_PreservesDuplicatesAndOrder(t *testing.T) {
	a := newFakeSkill("A", []string{"greet", "bye"}, nil)
	b := newFakeSkill("B", []string{"greet"}, nil)
	r := NewRegistry([]Skill{a, b}, nil, newFakeHost(), nil)

	got := r.AllIntents()
	want := []string{"greet", "bye", "greet"}
	if len(got) != len(want) {
		t.Fatalf("AllIntents = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("AllIntents = %v, want %v", got, want)
		}
	}

	r.EnableSkill("B", false)
	if got := r.AllIntents(); len(got) != 2 {
		t.Errorf("AllIntents with B disabled = %v, want 2 entries", got)
	}
}

func TestSkillStatus_Counts(t *testing.T) {
	a := newFakeSkill("A", []string{"greet", "bye"}, nil)
	b := newFakeSkill("B", []string{"greet"}, nil)
	failures := map[string]string{"broken": "manifest parse error"}
	r := NewRegistry([]Skill{a, b}, failures, newFakeHost(), nil)

	st := r.SkillStatus()
	if st.Loaded != 2 || st.Enabled != 2 || st.Disabled != 0 || st.Failed != 1 {
		t.Errorf("status = %+v", st)
	}
	if st.TotalIntents != 3 {
		t.Errorf("TotalIntents = %d, want 3", st.TotalIntents)
	}
	if st.UniqueIntents != 2 {
		t.Errorf("UniqueIntents = %d, want 2", st.UniqueIntents)
	}
	if st.UniqueIntents > st.TotalIntents {
		t.Error("unique intents exceed total intents")
	}

	r.EnableSkill("B", false)
	st = r.SkillStatus()
	if st.Enabled != 1 || st.Disabled != 1 {
		t.Errorf("status after disable = %+v", st)
	}
	if st.TotalIntents != 2 || st.UniqueIntents != 2 {
		t.Errorf("intent counts after disable = %+v", st)
	}
}

func TestHandleIntent_PanicRecovered(t *testing.T) {
	boom := newFakeSkill("Boom", []string{"explode"}, func(string, map[string]any, Host) bool {
		panic("handler bug")
	})
	quiet := newFakeSkill("Quiet", []string{"whisper"}, nil)
	r := NewRegistry([]Skill{boom, quiet}, nil, newFakeHost(), nil)

	if r.HandleIntent(context.Background(), "explode", nil) {
		t.Error("panicking handler reported handled=true")
	}
	// The registry survives; other skills still dispatch.
	if !r.HandleIntent(context.Background(), "whisper", nil) {
		t.Error("dispatch broken after a recovered panic")
	}
}

func TestHandleIntent_HandlerFalse(t *testing.T) {
	noop := newFakeSkill("Noop", []string{"shrug"}, func(string, map[string]any, Host) bool {
		return false
	})
	r := NewRegistry([]Skill{noop}, nil, newFakeHost(), nil)

	if r.HandleIntent(context.Background(), "shrug", nil) {
		t.Error("HandleIntent = true, want false from declining handler")
	}
	if noop.calls != 1 {
		t.Errorf("calls = %d, want 1", noop.calls)
	}
}
