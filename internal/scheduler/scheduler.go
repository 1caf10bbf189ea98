// Package scheduler triggers intents on cron schedules loaded from the
// automations file. Triggered intents run through the same pipeline as
// spoken commands, minus language resolution.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vesperhq/vesper/internal/events"
	"github.com/vesperhq/vesper/internal/skills"
)

// DefaultCooldown is the minimum interval between two triggers of the
// same automation.
const DefaultCooldown = 60 * time.Second

// Dispatcher runs an already-resolved intent.
type Dispatcher interface {
	HandleIntent(ctx context.Context, intent string, slots map[string]any) skills.Reply
}

type entry struct {
	automation Automation
	cron       *CronExpr
	cooldown   time.Duration
	lastRun    time.Time
}

// Scheduler fires automations when their cron schedule matches.
type Scheduler struct {
	dispatcher Dispatcher
	bus        *events.Bus

	mu      sync.Mutex
	entries []*entry

	done chan struct{}
	// tick interval, shortened in tests
	interval time.Duration
}

// New creates a scheduler over the given automations. Disabled entries
// are skipped at load time.
func New(dispatcher Dispatcher, bus *events.Bus, automations []Automation) (*Scheduler, error) {
	s := &Scheduler{
		dispatcher: dispatcher,
		bus:        bus,
		done:       make(chan struct{}),
		interval:   time.Minute,
	}

	for _, a := range automations {
		if a.Disabled {
			continue
		}
		ce, err := ParseCron(a.Cron)
		if err != nil {
			return nil, err
		}
		cooldown := DefaultCooldown
		if a.CooldownSec > 0 {
			cooldown = time.Duration(a.CooldownSec) * time.Second
		}
		s.entries = append(s.entries, &entry{automation: a, cron: ce, cooldown: cooldown})
	}
	return s, nil
}

// Start begins the cron loop.
func (s *Scheduler) Start() {
	slog.Info("scheduler started", "automations", len(s.entries))
	go s.loop()
}

// Stop halts the scheduler.
func (s *Scheduler) Stop() {
	close(s.done)
	slog.Info("scheduler stopped")
}

func (s *Scheduler) loop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			s.tick(now)
		case <-s.done:
			return
		}
	}
}

// tick fires every automation whose schedule matches now and whose
// cooldown has elapsed.
func (s *Scheduler) tick(now time.Time) {
	s.mu.Lock()
	var due []*entry
	for _, e := range s.entries {
		if !e.cron.Matches(now) {
			continue
		}
		if !e.lastRun.IsZero() && now.Sub(e.lastRun) < e.cooldown {
			continue
		}
		e.lastRun = now
		due = append(due, e)
	}
	s.mu.Unlock()

	for _, e := range due {
		s.fire(e)
	}
}

func (s *Scheduler) fire(e *entry) {
	a := e.automation
	slog.Info("automation triggered", "name", a.Name, "intent", a.Intent)

	if s.bus != nil {
		s.bus.Publish(events.NewEvent(events.EventScheduleTrigger, events.SourceScheduler, map[string]any{
			"automation": a.Name,
			"intent":     a.Intent,
		}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	reply := s.dispatcher.HandleIntent(ctx, a.Intent, a.Slots)
	if !reply.OK {
		slog.Warn("automation failed", "name", a.Name, "intent", a.Intent, "message", reply.Message)
	}
}
