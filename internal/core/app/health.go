package app

import (
	"context"
	"fmt"
	"time"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

// Check is "up" once a report exists. History is reported only when enabled.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	report := s.app.Current()
	if report == nil {
		status.Status = "degraded"
		status.Components["analysis"] = "no completed run"
	} else {
		status.Components["analysis"] = fmt.Sprintf("ok (%d packages, %d edges, %s ago)",
			report.Graph.Len(), report.Graph.EdgeCount(), time.Since(report.GeneratedAt).Round(time.Second))
	}

	if s.app.Config.History.Enabled {
		s.app.mu.RLock()
		opened := s.app.history != nil
		s.app.mu.RUnlock()
		if opened {
			status.Components["history"] = "ok"
		} else {
			status.Components["history"] = "not opened"
		}
	}
	return status
}
