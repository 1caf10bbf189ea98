package skills

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/vesperhq/vesper/internal/events"
)

// TimerSkill sets and cancels named countdown timers. When a timer fires
// it speaks through the host handle captured at construction.
type TimerSkill struct {
	*Base
	host Host

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewTimerSkill creates the timer skill, keeping the host handle for the
// asynchronous fire callback.
func NewTimerSkill(host Host) (Skill, error) {
	return &TimerSkill{
		Base:   NewBase("TimerSkill", "Sets and cancels countdown timers", []string{"timer.set", "timer.cancel"}),
		host:   host,
		timers: make(map[string]*time.Timer),
	}, nil
}

// Handle sets or cancels a timer. Slots: "minutes" and/or "seconds"
// (number or numeric string), optional "name".
func (s *TimerSkill) Handle(_ context.Context, intent string, slots map[string]any, host Host) bool {
	switch intent {
	case "timer.set":
		return s.set(slots, host)
	case "timer.cancel":
		return s.cancel(slots, host)
	}
	return false
}

func (s *TimerSkill) set(slots map[string]any, host Host) bool {
	d := time.Duration(slotInt(slots, "minutes"))*time.Minute +
		time.Duration(slotInt(slots, "seconds"))*time.Second
	if d <= 0 {
		host.Show(ErrorReply("I need a duration for the timer."))
		return false
	}

	name := slotString(slots, "name")
	if name == "" {
		name = "timer"
	}

	s.mu.Lock()
	if old, ok := s.timers[name]; ok {
		old.Stop()
	}
	s.timers[name] = time.AfterFunc(d, func() { s.fire(name) })
	s.mu.Unlock()

	host.Say(fmt.Sprintf("Timer %q set for %s.", name, d))
	return true
}

func (s *TimerSkill) cancel(slots map[string]any, host Host) bool {
	name := slotString(slots, "name")
	if name == "" {
		name = "timer"
	}

	s.mu.Lock()
	t, ok := s.timers[name]
	if ok {
		t.Stop()
		delete(s.timers, name)
	}
	s.mu.Unlock()

	if !ok {
		host.Say(fmt.Sprintf("There is no timer named %q.", name))
		return true
	}
	host.Say(fmt.Sprintf("Timer %q cancelled.", name))
	return true
}

func (s *TimerSkill) fire(name string) {
	s.mu.Lock()
	delete(s.timers, name)
	s.mu.Unlock()

	if s.host == nil {
		return
	}
	s.host.Say(fmt.Sprintf("Your timer %q is done.", name))
	s.host.Publish(string(events.EventDisplay), map[string]any{
		"timer": name,
		"state": "done",
	})
}

// slotString reads a string slot, tolerating missing values.
func slotString(slots map[string]any, key string) string {
	if v, ok := slots[key].(string); ok {
		return v
	}
	return ""
}

// slotInt reads a numeric slot that may arrive as a float (JSON), int, or
// numeric string (NLU capture).
func slotInt(slots map[string]any, key string) int {
	switch v := slots[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return 0
}

var _ Skill = (*TimerSkill)(nil)
