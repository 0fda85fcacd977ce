// Package ports defines the boundary interfaces between the dependency
// engine and the surfaces that drive it (CLI, TUI, observability server).
// UI layers depend on these interfaces, never on the app package directly.
package ports

import (
	"context"
	"time"

	"depscope/internal/data/history"
	"depscope/internal/engine/resolver"
	"depscope/internal/interp"
)

// RefreshResult summarizes one scan-and-resolve pass over the project.
type RefreshResult struct {
	GeneratedAt time.Time
	Duration    time.Duration
	Environment interp.Environment
	FileCount   int
	ModuleCount int
	StdlibCount int
	Installed   map[string]string
	Packages    []resolver.PackageStatus
	Missing     []string
}

// LineSink receives one subprocess output line at a time, in order.
type LineSink func(line string)

// InstallRequest asks for the named packages to be installed into the
// active environment. An empty Packages list means "install everything
// currently missing".
type InstallRequest struct {
	Packages []string
	Sink     LineSink
}

// InstallResult is the final verdict of a completed install operation.
type InstallResult struct {
	OperationID string
	Packages    []string
	Success     bool
	Lines       int
	Duration    time.Duration
	Error       string
}

// InstallEvent is a live progress notification for a running install.
// Line events carry one output line; the terminal event has Done set
// and carries the verdict.
type InstallEvent struct {
	OperationID string
	Packages    []string
	Line        string
	Done        bool
	Success     bool
	Error       string
}

// EnvironmentRequest asks for a new virtual environment with the given
// directory name under the project root.
type EnvironmentRequest struct {
	Name string
}

// ReportPrintRequest carries a finished result to the terminal reporter.
type ReportPrintRequest struct {
	Result   RefreshResult
	Duration time.Duration
}

// DependencyService exposes the dependency operations used by UI layers.
type DependencyService interface {
	Refresh(ctx context.Context) (RefreshResult, error)
	CurrentReport(ctx context.Context) (RefreshResult, error)
	Install(ctx context.Context, req InstallRequest) (InstallResult, error)
	CreateEnvironment(ctx context.Context, req EnvironmentRequest) (interp.Environment, error)
	ActiveEnvironment(ctx context.Context) (interp.Environment, error)
	RecentOperations(ctx context.Context, limit int) ([]history.Record, error)
	PrintReport(ctx context.Context, req ReportPrintRequest) error
	WatchService() WatchService
	Close(ctx context.Context) error
}

// WatchService exposes watch-mode lifecycle and live update fan-out.
type WatchService interface {
	Start(ctx context.Context) error
	Current(ctx context.Context) (RefreshResult, error)
	Subscribe(ctx context.Context, handler func(RefreshResult)) error
	SubscribeInstalls(ctx context.Context, handler func(InstallEvent)) error
}

// EnqueueResult reports the outcome of a non-blocking queue insert.
type EnqueueResult string

const (
	EnqueueAccepted EnqueueResult = "accepted"
	EnqueueDropped  EnqueueResult = "dropped"
)

// JournalQueuePort buffers operation records between the hot refresh and
// install paths and the background persistence worker.
type JournalQueuePort interface {
	Enqueue(record history.Record) EnqueueResult
	DequeueBatch(ctx context.Context, maxItems int, wait time.Duration) ([]history.Record, error)
	Close() error
}

// JournalStorePort persists operation records in batches.
type JournalStorePort interface {
	Append(records []history.Record) error
	Recent(kind history.Kind, limit int) ([]history.Record, error)
	Close() error
}
