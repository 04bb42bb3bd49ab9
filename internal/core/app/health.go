package app

import (
	"time"
)

// Status feeds the /health endpoint.
func (a *App) Status() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	status := map[string]any{
		"status": "up",
		"root":   a.Paths.ProjectRoot,
		"runs":   a.runs,
	}
	if a.lastRun == nil {
		return status
	}
	status["last_run"] = map[string]any{
		"entry":       a.lastRun.Entry,
		"started_at":  a.lastRun.StartedAt.UTC().Format(time.RFC3339),
		"duration_ms": a.lastRun.Duration.Milliseconds(),
		"changes":     len(a.lastRun.Changes),
		"nodes":       a.lastRun.Result.Stats.Nodes,
		"affected":    a.lastRun.Result.Stats.Affected,
		"warnings":    a.lastRun.Result.Stats.Warnings,
	}
	return status
}
