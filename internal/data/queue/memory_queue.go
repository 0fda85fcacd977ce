// Package queue buffers journal records between the refresh/install
// paths and the background write worker.
package queue

import (
	"context"
	"io"
	"sync"
	"time"

	"depscope/internal/core/ports"
	"depscope/internal/data/history"
)

var _ ports.JournalQueuePort = (*MemoryQueue)(nil)

type MemoryQueue struct {
	ch     chan history.Record
	mu     sync.RWMutex
	closed bool
}

func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &MemoryQueue{ch: make(chan history.Record, capacity)}
}

// Enqueue never blocks. A full or closed queue drops the record.
func (q *MemoryQueue) Enqueue(record history.Record) ports.EnqueueResult {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ports.EnqueueDropped
	}
	select {
	case q.ch <- record:
		return ports.EnqueueAccepted
	default:
		return ports.EnqueueDropped
	}
}

func (q *MemoryQueue) DequeueBatch(ctx context.Context, maxItems int, wait time.Duration) ([]history.Record, error) {
	if maxItems <= 0 {
		maxItems = 1
	}
	batch := make([]history.Record, 0, maxItems)

	var timer <-chan time.Time
	if wait > 0 {
		t := time.NewTimer(wait)
		defer t.Stop()
		timer = t.C
	}

	select {
	case record, ok := <-q.ch:
		if !ok {
			return nil, io.EOF
		}
		batch = append(batch, record)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer:
		return nil, nil
	default:
		if wait <= 0 {
			return nil, nil
		}
		select {
		case record, ok := <-q.ch:
			if !ok {
				return nil, io.EOF
			}
			batch = append(batch, record)
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer:
			return nil, nil
		}
	}

	for len(batch) < maxItems {
		select {
		case record, ok := <-q.ch:
			if !ok {
				return batch, io.EOF
			}
			batch = append(batch, record)
		default:
			return batch, nil
		}
	}

	return batch, nil
}

func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	close(q.ch)
	return nil
}

func (q *MemoryQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.ch)
}
