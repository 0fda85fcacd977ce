// Package app wires the scanner, parser, resolver and journal into the
// dependency engine behind the service ports.
package app

import (
	"context"
	"fmt"
	"sync"

	"depscope/internal/core/config"
	"depscope/internal/core/ports"
	"depscope/internal/core/watcher"
	"depscope/internal/engine/parser"
	"depscope/internal/engine/resolver"
	"depscope/internal/interp"
	"depscope/internal/shared/util"
)

type App struct {
	Config   *config.Config
	Parser   *parser.Parser
	Resolver *resolver.Resolver

	paths config.ResolvedPaths

	// Environment snapshots are immutable; operations capture the one
	// active at dispatch and never see later switches.
	envMu sync.RWMutex
	env   interp.Environment

	updateMu sync.RWMutex
	onUpdate func(ports.RefreshResult)

	installMu sync.RWMutex
	onInstall func(ports.InstallEvent)

	reportMu   sync.RWMutex
	lastReport *ports.RefreshResult

	activeWatcher  *watcher.Watcher
	refreshLimiter *util.Limiter

	journalQueue ports.JournalQueuePort
	journalStore ports.JournalStorePort
	workerCancel context.CancelFunc
	workerDone   chan struct{}
}

func New(cfg *config.Config, paths config.ResolvedPaths) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	probe := func(ctx context.Context, env interp.Environment, names []string) (map[string]interp.ProbeResult, error) {
		probeCtx, cancel := context.WithTimeout(ctx, cfg.Interpreter.ProbeTimeout)
		defer cancel()
		return interp.ProbeModules(probeCtx, env, names)
	}

	a := &App{
		Config: cfg,
		Parser: parser.NewParser(),
		Resolver: resolver.NewResolver(
			resolver.NewInterpreterClassifier(probe),
			resolver.NewAliasMap(cfg.Aliases),
			interp.Pip{},
		),
		paths:          paths,
		refreshLimiter: util.NewLimiter(cfg.Watch.RefreshPerSecond, cfg.Watch.RefreshBurst),
	}
	a.env = interp.Detect(paths.ProjectRoot, cfg.Interpreter.Executable, cfg.Interpreter.VenvCandidates)

	if err := a.initJournal(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) ProjectRoot() string {
	return a.paths.ProjectRoot
}

// ActiveEnvironment returns the current environment snapshot.
func (a *App) ActiveEnvironment() interp.Environment {
	a.envMu.RLock()
	defer a.envMu.RUnlock()
	return a.env
}

// setEnvironment switches the active snapshot, e.g. after creating a
// virtual environment.
func (a *App) setEnvironment(env interp.Environment) {
	a.envMu.Lock()
	a.env = env
	a.envMu.Unlock()
}

// detectEnvironment re-probes the venv candidates so an environment
// created after startup is picked up without a restart. An explicitly
// activated environment stays active while its interpreter exists.
func (a *App) detectEnvironment() interp.Environment {
	a.envMu.Lock()
	defer a.envMu.Unlock()

	if !a.env.IsGlobal() && a.env.Exists() {
		return a.env
	}
	a.env = interp.Detect(a.paths.ProjectRoot, a.Config.Interpreter.Executable, a.Config.Interpreter.VenvCandidates)
	return a.env
}

func (a *App) SetUpdateHandler(handler func(ports.RefreshResult)) {
	a.updateMu.Lock()
	defer a.updateMu.Unlock()
	a.onUpdate = handler
}

func (a *App) emitUpdate(result ports.RefreshResult) {
	a.updateMu.RLock()
	handler := a.onUpdate
	a.updateMu.RUnlock()
	if handler != nil {
		handler(result)
	}
}

func (a *App) SetInstallHandler(handler func(ports.InstallEvent)) {
	a.installMu.Lock()
	defer a.installMu.Unlock()
	a.onInstall = handler
}

func (a *App) emitInstallEvent(event ports.InstallEvent) {
	a.installMu.RLock()
	handler := a.onInstall
	a.installMu.RUnlock()
	if handler != nil {
		handler(event)
	}
}

func (a *App) setLastReport(result ports.RefreshResult) {
	a.reportMu.Lock()
	defer a.reportMu.Unlock()
	a.lastReport = &result
}

// LastReport returns the most recent refresh result, if any.
func (a *App) LastReport() (ports.RefreshResult, bool) {
	a.reportMu.RLock()
	defer a.reportMu.RUnlock()
	if a.lastReport == nil {
		return ports.RefreshResult{}, false
	}
	return *a.lastReport, true
}
