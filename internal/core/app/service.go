package app

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"depscope/internal/core/errors"
	"depscope/internal/core/ports"
	"depscope/internal/data/history"
	"depscope/internal/engine/resolver"
	"depscope/internal/interp"
	"depscope/internal/shared/observability"
)

type dependencyService struct {
	app *App
}

var _ ports.DependencyService = (*dependencyService)(nil)

func NewDependencyService(app *App) ports.DependencyService {
	return &dependencyService{app: app}
}

func (a *App) DependencyService() ports.DependencyService {
	return NewDependencyService(a)
}

func (s *dependencyService) Close(ctx context.Context) error {
	if s == nil || s.app == nil {
		return nil
	}
	return s.app.Close(ctx)
}

func (s *dependencyService) Refresh(ctx context.Context) (ports.RefreshResult, error) {
	ctx, span := observability.Tracer.Start(ctx, "dependencyService.Refresh", trace.WithAttributes())
	defer span.End()

	if err := ctx.Err(); err != nil {
		return ports.RefreshResult{}, err
	}
	if s.app == nil {
		return ports.RefreshResult{}, fmt.Errorf("app is required")
	}

	result, err := s.app.Refresh(ctx)
	if err != nil {
		return ports.RefreshResult{}, err
	}
	return copyRefreshResult(result), nil
}

func (s *dependencyService) CurrentReport(ctx context.Context) (ports.RefreshResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.RefreshResult{}, err
	}
	if s.app == nil {
		return ports.RefreshResult{}, fmt.Errorf("app is required")
	}
	if result, ok := s.app.LastReport(); ok {
		return copyRefreshResult(result), nil
	}
	return s.Refresh(ctx)
}

func (s *dependencyService) Install(ctx context.Context, req ports.InstallRequest) (ports.InstallResult, error) {
	ctx, span := observability.Tracer.Start(ctx, "dependencyService.Install", trace.WithAttributes())
	defer span.End()

	if err := ctx.Err(); err != nil {
		return ports.InstallResult{}, err
	}
	if s.app == nil {
		return ports.InstallResult{}, fmt.Errorf("app is required")
	}
	return s.app.Install(ctx, req.Packages, req.Sink), nil
}

func (s *dependencyService) CreateEnvironment(ctx context.Context, req ports.EnvironmentRequest) (interp.Environment, error) {
	if err := ctx.Err(); err != nil {
		return interp.Environment{}, err
	}
	if s.app == nil {
		return interp.Environment{}, fmt.Errorf("app is required")
	}

	base := interp.Global(s.app.Config.Interpreter.Executable)
	env, err := interp.Create(ctx, base.Executable, s.app.ProjectRoot(), strings.TrimSpace(req.Name))
	if err != nil {
		return interp.Environment{}, errors.AddContext(err, errors.CtxOperation, "create_environment")
	}

	// The fresh environment becomes the active snapshot right away.
	s.app.setEnvironment(env)
	return env, nil
}

func (s *dependencyService) ActiveEnvironment(ctx context.Context) (interp.Environment, error) {
	if err := ctx.Err(); err != nil {
		return interp.Environment{}, err
	}
	if s.app == nil {
		return interp.Environment{}, fmt.Errorf("app is required")
	}
	return s.app.ActiveEnvironment(), nil
}

func (s *dependencyService) RecentOperations(ctx context.Context, limit int) ([]history.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.app == nil {
		return nil, fmt.Errorf("app is required")
	}
	if s.app.journalStore == nil {
		return nil, errors.New(errors.CodeUnavailable, "operation journal is disabled")
	}

	records, err := s.app.journalStore.Recent("", limit)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxOperation, "recent_operations")
	}
	return records, nil
}

func (s *dependencyService) PrintReport(ctx context.Context, req ports.ReportPrintRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.app == nil {
		return fmt.Errorf("app is required")
	}
	s.app.PrintReport(req.Result, req.Duration)
	return nil
}

func (s *dependencyService) WatchService() ports.WatchService {
	return &watchService{app: s.app}
}

type watchService struct {
	app *App
}

var _ ports.WatchService = (*watchService)(nil)

func (s *watchService) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.app == nil {
		return fmt.Errorf("app is required")
	}
	return s.app.StartWatcher()
}

func (s *watchService) Current(ctx context.Context) (ports.RefreshResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.RefreshResult{}, err
	}
	if s.app == nil {
		return ports.RefreshResult{}, fmt.Errorf("app is required")
	}
	if result, ok := s.app.LastReport(); ok {
		return copyRefreshResult(result), nil
	}

	result, err := s.app.Refresh(ctx)
	if err != nil {
		return ports.RefreshResult{}, err
	}
	return copyRefreshResult(result), nil
}

func (s *watchService) Subscribe(ctx context.Context, handler func(ports.RefreshResult)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.app == nil {
		return fmt.Errorf("app is required")
	}
	if handler == nil {
		return fmt.Errorf("handler is required")
	}
	s.app.SetUpdateHandler(func(result ports.RefreshResult) {
		if ctx.Err() != nil {
			return
		}
		handler(copyRefreshResult(result))
	})
	return nil
}

func (s *watchService) SubscribeInstalls(ctx context.Context, handler func(ports.InstallEvent)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.app == nil {
		return fmt.Errorf("app is required")
	}
	if handler == nil {
		return fmt.Errorf("handler is required")
	}
	s.app.SetInstallHandler(func(event ports.InstallEvent) {
		if ctx.Err() != nil {
			return
		}
		handler(copyInstallEvent(event))
	})
	return nil
}

func copyRefreshResult(result ports.RefreshResult) ports.RefreshResult {
	out := result
	out.Packages = append([]resolver.PackageStatus(nil), result.Packages...)
	out.Missing = append([]string(nil), result.Missing...)
	if result.Installed != nil {
		installed := make(map[string]string, len(result.Installed))
		for name, version := range result.Installed {
			installed[name] = version
		}
		out.Installed = installed
	}
	return out
}

func copyInstallEvent(event ports.InstallEvent) ports.InstallEvent {
	out := event
	out.Packages = append([]string(nil), event.Packages...)
	return out
}
