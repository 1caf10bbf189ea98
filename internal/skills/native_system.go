package skills

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"
)

// SystemSkill answers questions about the machine Vesper runs on.
type SystemSkill struct {
	*Base
	started time.Time
}

func NewSystemSkill(_ Host) (Skill, error) {
	return &SystemSkill{
		Base:    NewBase("SystemSkill", "Reports host system status and info", []string{"system.status", "system.info"}),
		started: time.Now(),
	}, nil
}

func (s *SystemSkill) Handle(_ context.Context, intent string, _ map[string]any, host Host) bool {
	switch intent {
	case "system.status":
		up := time.Since(s.started).Round(time.Second)
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)
		host.Show(Reply{
			OK:          true,
			Message:     fmt.Sprintf("Up for %s, %d goroutines, %.1f MB in use.", up, runtime.NumGoroutine(), float64(mem.Alloc)/(1<<20)),
			DisplayType: DisplayInfo,
			DisplayData: map[string]any{
				"uptime":     up.String(),
				"goroutines": runtime.NumGoroutine(),
				"heap_mb":    float64(mem.Alloc) / (1 << 20),
			},
		})
		return true
	case "system.info":
		host.Show(Reply{
			OK:          true,
			Message:     fmt.Sprintf("Running on %s/%s with %d CPUs.", runtime.GOOS, runtime.GOARCH, runtime.NumCPU()),
			DisplayType: DisplayInfo,
			DisplayData: map[string]any{
				"os":       runtime.GOOS,
				"arch":     runtime.GOARCH,
				"cpus":     runtime.NumCPU(),
				"go":       runtime.Version(),
				"hostname": hostname(),
				"pid":      os.Getpid(),
			},
		})
		return true
	}
	return false
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}

var _ Skill = (*SystemSkill)(nil)
