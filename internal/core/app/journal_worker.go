package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"depscope/internal/core/ports"
	"depscope/internal/data/history"
	"depscope/internal/data/queue"
	"depscope/internal/shared/observability"
)

func (a *App) initJournal() error {
	if a == nil || a.Config == nil {
		return nil
	}
	if !a.Config.History.JournalEnabled() {
		return nil
	}

	store, err := history.Open(a.paths.JournalPath)
	if err != nil {
		return err
	}
	a.journalStore = store
	a.journalQueue = queue.NewMemoryQueue(a.Config.History.QueueCapacity)
	return a.startJournalWorker()
}

func (a *App) startJournalWorker() error {
	if a == nil || a.journalQueue == nil || a.workerCancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.workerCancel = cancel
	a.workerDone = make(chan struct{})
	go a.runJournalWorker(ctx)
	return nil
}

func (a *App) runJournalWorker(ctx context.Context) {
	defer close(a.workerDone)

	batchSize := a.Config.History.BatchSize
	if batchSize <= 0 {
		batchSize = 1
	}
	flushInterval := a.Config.History.FlushInterval
	if flushInterval <= 0 {
		flushInterval = 100 * time.Millisecond
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		batch, err := a.journalQueue.DequeueBatch(ctx, batchSize, flushInterval)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
			slog.Warn("journal dequeue failed", "error", err)
			continue
		}
		if errors.Is(err, context.Canceled) {
			return
		}

		if len(batch) == 0 {
			a.updateJournalMetrics()
			if errors.Is(err, io.EOF) {
				return
			}
			continue
		}

		started := time.Now()
		if applyErr := a.journalStore.Append(batch); applyErr != nil {
			observability.JournalApplyErrorsTotal.Inc()
			slog.Warn("journal apply failed", "error", applyErr, "batch_size", len(batch))
		} else {
			observability.JournalProcessedTotal.Add(float64(len(batch)))
			observability.JournalFlushLatencySeconds.Observe(time.Since(started).Seconds())
		}
		a.updateJournalMetrics()
	}
}

func (a *App) enqueueJournal(record history.Record) {
	if a == nil || a.journalQueue == nil {
		return
	}
	switch a.journalQueue.Enqueue(record) {
	case ports.EnqueueAccepted:
		observability.JournalEnqueuedTotal.Inc()
	case ports.EnqueueDropped:
		observability.JournalDroppedTotal.Inc()
		slog.Warn("journal queue full, dropping record", "kind", record.Kind, "id", record.ID)
	}
	a.updateJournalMetrics()
}

func (a *App) updateJournalMetrics() {
	if a == nil {
		return
	}
	if mq, ok := a.journalQueue.(*queue.MemoryQueue); ok {
		observability.JournalQueueDepth.Set(float64(mq.Len()))
	}
}

func (a *App) stopJournalWorker(ctx context.Context) error {
	if a == nil {
		return nil
	}
	if a.workerCancel != nil {
		a.workerCancel()
		a.workerCancel = nil
	}
	if a.workerDone != nil {
		select {
		case <-a.workerDone:
		case <-ctx.Done():
			return ctx.Err()
		}
		a.workerDone = nil
	}
	if err := a.drainJournalQueue(ctx); err != nil {
		return err
	}
	if a.journalQueue != nil {
		if err := a.journalQueue.Close(); err != nil {
			return err
		}
		a.journalQueue = nil
	}
	return nil
}

func (a *App) drainJournalQueue(ctx context.Context) error {
	if a == nil || a.journalQueue == nil {
		return nil
	}
	batchSize := a.Config.History.BatchSize
	if batchSize <= 0 {
		batchSize = 1
	}
	for {
		batch, err := a.journalQueue.DequeueBatch(ctx, batchSize, 0)
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		if applyErr := a.journalStore.Append(batch); applyErr != nil {
			return applyErr
		}
	}
}

func (a *App) Close(ctx context.Context) error {
	if a == nil {
		return nil
	}
	drainTimeout := 5 * time.Second
	if a.Config != nil && a.Config.History.ShutdownDrainTimeout > 0 {
		drainTimeout = a.Config.History.ShutdownDrainTimeout
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, drainTimeout)
		defer cancel()
	}
	if a.activeWatcher != nil {
		if err := a.activeWatcher.Close(); err != nil {
			slog.Warn("failed to close watcher", "error", err)
		}
		a.activeWatcher = nil
	}
	if err := a.stopJournalWorker(ctx); err != nil {
		return err
	}
	if a.journalStore != nil {
		if err := a.journalStore.Close(); err != nil {
			return err
		}
		a.journalStore = nil
	}
	return nil
}
