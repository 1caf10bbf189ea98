package skills

import (
	"context"
	"time"
)

// ClockSkill answers time and date questions.
type ClockSkill struct {
	*Base
	now func() time.Time
}

// NewClockSkill creates the clock skill. The host handle is unused; the
// skill only reads the wall clock.
func NewClockSkill(_ Host) (Skill, error) {
	return &ClockSkill{
		Base: NewBase("ClockSkill", "Tells the current time and date", []string{"time.get", "date.get"}),
		now:  time.Now,
	}, nil
}

// Handle speaks the current time or date.
func (s *ClockSkill) Handle(_ context.Context, intent string, _ map[string]any, host Host) bool {
	now := s.now()
	switch intent {
	case "time.get":
		host.Say("It is " + now.Format("3:04 PM"))
	case "date.get":
		host.Say("Today is " + now.Format("Monday, January 2"))
	default:
		return false
	}
	return true
}

var _ Skill = (*ClockSkill)(nil)
