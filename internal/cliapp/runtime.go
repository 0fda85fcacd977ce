package cliapp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"depscope/internal/core/app"
	"depscope/internal/core/config"
	"depscope/internal/core/ports"
	"depscope/internal/shared/observability"
)

func Run(args []string) int {
	opts, err := parseOptions(args)
	if err != nil {
		return 2
	}

	if opts.version {
		fmt.Printf("depscope v%s\n", versionString)
		return 0
	}

	cleanupLogs := configureLogging(opts.ui, opts.verbose)
	defer cleanupLogs()

	cwd, err := os.Getwd()
	if err != nil {
		slog.Error("failed to detect working directory", "error", err)
		return 1
	}

	cfg, err := loadConfig(opts.configPath, cwd)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	config.ApplyEnvOverrides(cfg)

	if err := applyModeOptions(&opts, cfg); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	paths, err := config.ResolvePaths(cfg, cwd)
	if err != nil {
		slog.Error("failed to resolve runtime paths", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Observability.OTLPEndpoint)
	if err != nil {
		slog.Error("failed to set up tracing", "error", err)
		return 1
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}()

	application, err := app.New(cfg, paths)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return 1
	}
	service := application.DependencyService()
	defer func() {
		if err := service.Close(context.Background()); err != nil {
			slog.Warn("shutdown incomplete", "error", err)
		}
	}()

	if cfg.Observability.Enabled {
		obs := NewObservabilityServer(fmt.Sprintf(":%d", cfg.Observability.Port), app.NewHealthService(application))
		if err := obs.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "error", err)
			return 1
		}
		defer func() { _ = obs.Stop(context.Background()) }()
	}

	if opts.createVenv != "" {
		env, err := service.CreateEnvironment(ctx, ports.EnvironmentRequest{Name: opts.createVenv})
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			return 1
		}
		fmt.Printf("Created virtual environment %s (%s)\n", env.Label(), env.Executable)
	}

	report, err := service.Refresh(ctx)
	if err != nil {
		slog.Error("initial refresh failed", "error", err)
		return 1
	}

	if !opts.ui {
		if err := service.PrintReport(ctx, ports.ReportPrintRequest{Result: report, Duration: report.Duration}); err != nil {
			slog.Error("failed to print report", "error", err)
			return 1
		}
	}

	if opts.install {
		if code := runInstall(service); code != 0 {
			return code
		}

		report, err = service.Refresh(ctx)
		if err != nil {
			slog.Error("post-install refresh failed", "error", err)
			return 1
		}
		if !opts.ui {
			if err := service.PrintReport(ctx, ports.ReportPrintRequest{Result: report, Duration: report.Duration}); err != nil {
				slog.Error("failed to print report", "error", err)
				return 1
			}
		}
	}

	if opts.once {
		return 0
	}

	watch := service.WatchService()
	if watch == nil {
		slog.Error("watch service unavailable")
		return 1
	}
	if err := watch.Start(ctx); err != nil {
		slog.Error("failed to start watcher", "error", err)
		return 1
	}

	if opts.ui {
		if err := runUI(service); err != nil {
			slog.Error("failed to run UI", "error", err)
			return 1
		}
		return 0
	}

	<-ctx.Done()
	return 0
}

// runInstall installs the missing set of the last refresh, streaming pip
// output to stdout. Installs run under a background context: an in-flight
// pip subprocess is never cancelled, it finishes or fails on its own.
func runInstall(service ports.DependencyService) int {
	result, err := service.Install(context.Background(), ports.InstallRequest{
		Sink: func(line string) { fmt.Println(line) },
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	if !result.Success {
		fmt.Fprintf(os.Stderr, "install failed: %s\n", result.Error)
		return 1
	}
	if len(result.Packages) == 0 {
		fmt.Println("Nothing to install.")
		return 0
	}
	fmt.Printf("Installed %d packages in %v\n", len(result.Packages), result.Duration.Round(time.Millisecond))
	return 0
}

func loadConfig(path, cwd string) (*config.Config, error) {
	if path != defaultConfigPath {
		return config.Load(path)
	}

	for _, candidate := range defaultConfigCandidates(cwd) {
		cfg, err := config.Load(candidate)
		if err == nil {
			return cfg, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	slog.Debug("no config file found, using built-in defaults")
	return config.Default(), nil
}

func defaultConfigCandidates(cwd string) []string {
	return []string{
		filepath.Clean(filepath.Join(cwd, "depscope.toml")),
		filepath.Clean(filepath.Join(cwd, "depscope.example.toml")),
	}
}

func applyModeOptions(opts *cliOptions, cfg *config.Config) error {
	if opts.ui && opts.once {
		return fmt.Errorf("--ui and --once cannot be combined")
	}

	if len(opts.args) > 1 {
		return fmt.Errorf("at most one project root argument is accepted: depscope [flags] [project-root]")
	}
	if len(opts.args) == 1 {
		cfg.Paths.ProjectRoot = opts.args[0]
	}
	return nil
}

func configureLogging(uiMode, verbose bool) func() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	output := os.Stdout
	var closeFn func() = func() {}
	if uiMode {
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
				fmt.Fprintf(os.Stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
			} else {
				f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
				if err == nil {
					output = f
					closeFn = func() { _ = f.Close() }
				} else {
					fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
				}
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return closeFn
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "depscope", "depscope.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "depscope", "depscope.log")
	}

	return "depscope.log"
}
