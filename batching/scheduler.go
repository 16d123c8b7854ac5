// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package batching provides a generic micro-batching scheduler: many
// callers submit single items, one background worker groups them into
// batches for a user-supplied batch function, and results fan back to
// each caller over a private one-shot channel. It trades a bounded
// amount of latency for model-call throughput.
package batching

import (
	"context"
	"sync"
	"time"
)

// Defaults for the scheduler.
const (
	DefaultBatchSize     = 16
	DefaultMaxWait       = 50 * time.Millisecond
	DefaultQueueCapacity = 1024
	DefaultCloseGrace    = 5 * time.Second
)

// BatchFunc processes one collected batch. It must return exactly one
// result per input item, in input order.
type BatchFunc[T, R any] func(ctx context.Context, items []T) ([]R, error)

// Stats are the scheduler's running throughput counters.
type Stats struct {
	BatchesProcessed uint64
	ItemsProcessed   uint64
	LargestBatch     int
}

type response[R any] struct {
	value R
	err   error
}

type request[T, R any] struct {
	item     T
	resultCh chan response[R]
}

// Scheduler aggregates single-item submissions into batches. A batch
// is dispatched when batchSize items have been collected or maxWait
// has elapsed since the first item of the current batch arrived,
// whichever comes first. The worker count is fixed at one.
type Scheduler[T, R any] struct {
	batchFn    BatchFunc[T, R]
	batchSize  int
	maxWait    time.Duration
	closeGrace time.Duration

	intake chan request[T, R]
	done   chan struct{}

	mu     sync.RWMutex
	closed bool

	statsMu sync.Mutex
	stats   Stats
}

// SchedulerOption configures a Scheduler.
type SchedulerOption[T, R any] func(*Scheduler[T, R])

// WithBatchSize sets the maximum batch size. Values below 1 keep the default.
func WithBatchSize[T, R any](size int) SchedulerOption[T, R] {
	return func(s *Scheduler[T, R]) {
		if size >= 1 {
			s.batchSize = size
		}
	}
}

// WithMaxWait sets how long the worker waits for a batch to fill.
func WithMaxWait[T, R any](maxWait time.Duration) SchedulerOption[T, R] {
	return func(s *Scheduler[T, R]) {
		if maxWait > 0 {
			s.maxWait = maxWait
		}
	}
}

// WithQueueCapacity sets the intake queue capacity.
func WithQueueCapacity[T, R any](capacity int) SchedulerOption[T, R] {
	return func(s *Scheduler[T, R]) {
		if capacity >= 1 {
			s.intake = make(chan request[T, R], capacity)
		}
	}
}

// WithCloseGrace bounds how long Close waits for the worker to drain.
func WithCloseGrace[T, R any](grace time.Duration) SchedulerOption[T, R] {
	return func(s *Scheduler[T, R]) {
		if grace > 0 {
			s.closeGrace = grace
		}
	}
}

// NewScheduler creates a scheduler and starts its worker.
func NewScheduler[T, R any](batchFn BatchFunc[T, R], opts ...SchedulerOption[T, R]) (*Scheduler[T, R], error) {
	if batchFn == nil {
		return nil, ErrBatchFuncRequired
	}
	s := &Scheduler[T, R]{
		batchFn:    batchFn,
		batchSize:  DefaultBatchSize,
		maxWait:    DefaultMaxWait,
		closeGrace: DefaultCloseGrace,
		intake:     make(chan request[T, R], DefaultQueueCapacity),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.worker()
	return s, nil
}

// Process submits one item and blocks until its result arrives, the
// timeout passes, or ctx is canceled.
func (s *Scheduler[T, R]) Process(ctx context.Context, item T, timeout time.Duration) (R, error) {
	var zero R

	resultCh := make(chan response[R], 1)

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return zero, ErrSchedulerClosed
	}
	select {
	case s.intake <- request[T, R]{item: item, resultCh: resultCh}:
		s.mu.RUnlock()
	case <-ctx.Done():
		s.mu.RUnlock()
		return zero, ctx.Err()
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp := <-resultCh:
		return resp.value, resp.err
	case <-timer.C:
		return zero, ErrProcessTimeout
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Close stops intake and waits for the worker to drain pending
// batches, up to the configured grace period.
func (s *Scheduler[T, R]) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.intake)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-time.After(s.closeGrace):
		return ErrCloseTimeout
	}
}

// Stats returns a snapshot of the throughput counters.
func (s *Scheduler[T, R]) Stats() Stats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.stats
}

// worker is the single consumer goroutine.
func (s *Scheduler[T, R]) worker() {
	defer close(s.done)

	for {
		first, ok := <-s.intake
		if !ok {
			return
		}

		batch := []request[T, R]{first}
		timer := time.NewTimer(s.maxWait)

	collect:
		for len(batch) < s.batchSize {
			select {
			case req, open := <-s.intake:
				if !open {
					timer.Stop()
					s.dispatch(batch)
					return
				}
				batch = append(batch, req)
			case <-timer.C:
				break collect
			}
		}
		timer.Stop()
		s.dispatch(batch)
	}
}

// dispatch runs the batch function once and fans results (or the
// error) back to every caller in the batch.
func (s *Scheduler[T, R]) dispatch(batch []request[T, R]) {
	items := make([]T, len(batch))
	for i, req := range batch {
		items[i] = req.item
	}

	results, err := s.batchFn(context.Background(), items)
	if err == nil && len(results) != len(items) {
		err = ErrResultCountMismatch
	}

	for i, req := range batch {
		if err != nil {
			req.resultCh <- response[R]{err: err}
			continue
		}
		req.resultCh <- response[R]{value: results[i]}
	}

	s.statsMu.Lock()
	s.stats.BatchesProcessed++
	s.stats.ItemsProcessed += uint64(len(items))
	if len(items) > s.stats.LargestBatch {
		s.stats.LargestBatch = len(items)
	}
	s.statsMu.Unlock()
}
