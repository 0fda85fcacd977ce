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

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	if s.app.Parser == nil {
		status.Status = "degraded"
		status.Components["parser"] = "missing"
	} else {
		status.Components["parser"] = fmt.Sprintf("ok (%d leased)", s.app.Parser.ActiveParsers())
	}

	env := s.app.ActiveEnvironment()
	status.Components["environment"] = env.Label()

	if report, ok := s.app.LastReport(); ok {
		status.Components["report"] = fmt.Sprintf("ok (%d files, %d modules, %d missing)",
			report.FileCount, report.ModuleCount, len(report.Missing))
	} else {
		status.Components["report"] = "no refresh yet"
	}

	if s.app.journalStore != nil {
		status.Components["journal"] = "ok"
	} else if s.app.Config.History.JournalEnabled() {
		status.Status = "degraded"
		status.Components["journal"] = "missing but enabled in config"
	}

	return status
}
