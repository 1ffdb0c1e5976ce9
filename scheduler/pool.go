package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/nextlevelbuilder/taskcore/cronexpr"
	"github.com/nextlevelbuilder/taskcore/retry"
	"github.com/nextlevelbuilder/taskcore/storage"
)

// defaultTimeout applies when a task's configured Timeout is zero.
const defaultTimeout = 60 * time.Second

// Pool runs claimed tasks against their registered handlers, enforcing
// a per-run timeout and a pool-wide concurrency bound. It is the
// generalization of the teacher's per-session SessionQueue to a single
// pool-wide bound shared by every claimed task regardless of name.
// Admission is gated by a weighted semaphore rather than a hand-rolled
// counter-plus-mutex.
type Pool struct {
	store    storage.Storage
	registry *Registry
	log      *slog.Logger

	maxConcurrent int
	sem           *semaphore.Weighted // nil means unbounded
	inFlight      atomic.Int64

	mu      sync.Mutex
	cancels map[int64]context.CancelFunc

	wg sync.WaitGroup
}

// NewPool returns a Pool bounded to maxConcurrent simultaneous runs.
// maxConcurrent <= 0 means unbounded.
func NewPool(store storage.Storage, registry *Registry, maxConcurrent int, log *slog.Logger) *Pool {
	if log == nil {
		log = slog.Default()
	}
	p := &Pool{
		store:         store,
		registry:      registry,
		log:           log,
		maxConcurrent: maxConcurrent,
		cancels:       make(map[int64]context.CancelFunc),
	}
	if maxConcurrent > 0 {
		p.sem = semaphore.NewWeighted(int64(maxConcurrent))
	}
	return p
}

// HasCapacity reports whether the pool can accept another run right now.
func (p *Pool) HasCapacity() bool {
	if p.sem == nil {
		return true
	}
	if p.sem.TryAcquire(1) {
		p.sem.Release(1)
		return true
	}
	return false
}

// InFlight returns the number of runs currently executing.
func (p *Pool) InFlight() int {
	return int(p.inFlight.Load())
}

// PoolStats is a snapshot of pool occupancy, returned by taskmanager's
// public Stats call.
type PoolStats struct {
	InFlight      int
	MaxConcurrent int
}

// Stats returns a snapshot of current pool occupancy.
func (p *Pool) Stats() PoolStats {
	return PoolStats{InFlight: p.InFlight(), MaxConcurrent: p.maxConcurrent}
}

// Submit runs t asynchronously against its registered handler. parent
// bounds the run's lifetime on top of the task's own timeout, so
// Pool.Shutdown can cut every in-flight run short.
//
// The caller (Scheduler.tick) sizes its claim batch to the pool's free
// capacity, so TryAcquire here should never fail in practice; if it
// does (a race against a concurrent Submit), the task is pushed back
// to pending immediately rather than dropped.
func (p *Pool) Submit(parent context.Context, t storage.Task) {
	handler, ok := p.registry.Lookup(t.Name)
	if !ok {
		p.failNoHandler(parent, t)
		return
	}

	if p.sem != nil && !p.sem.TryAcquire(1) {
		p.log.Warn("pool at capacity, requeueing claimed task", "task_id", t.ID)
		if err := p.store.Fail(context.Background(), t.ID, "requeued: pool at capacity", storage.StatusPending, time.Now().Unix()); err != nil {
			p.log.Error("requeue task after capacity miss", "task_id", t.ID, "error", err)
		}
		return
	}
	p.inFlight.Add(1)

	timeout := defaultTimeout
	if t.Timeout > 0 {
		timeout = time.Duration(t.Timeout) * time.Second
	}
	runCtx, cancel := context.WithTimeout(parent, timeout)

	p.mu.Lock()
	p.cancels[t.ID] = cancel
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() {
			cancel()
			p.mu.Lock()
			delete(p.cancels, t.ID)
			p.mu.Unlock()
			p.inFlight.Add(-1)
			if p.sem != nil {
				p.sem.Release(1)
			}
		}()
		p.runOne(runCtx, handler, t)
	}()
}

func (p *Pool) runOne(ctx context.Context, handler Handler, t storage.Task) {
	runID := uuid.NewString()
	tc := &TaskContext{
		ID:         t.ID,
		Name:       t.Name,
		Type:       t.Type,
		Priority:   t.Priority,
		Payload:    t.Payload,
		RetryCount: t.RetryCount,
		MaxRetries: t.MaxRetries,
		RunID:      runID,
		ctx:        ctx,
	}
	p.log.Debug("run starting", "task_id", t.ID, "name", t.Name, "run_id", runID)

	result, err := handler(tc)

	// A handler that ignores cancellation still runs to natural
	// completion; the task is recorded as a timeout regardless of what
	// it returned.
	if ctx.Err() == context.DeadlineExceeded {
		err = fmt.Errorf("%w after %ds", ErrTimeout, t.Timeout)
	}

	bg := context.Background()
	now := time.Now().Unix()

	if err != nil {
		p.recordFailure(bg, t, now, err)
		return
	}
	p.recordSuccess(bg, t, now, result)
}

func (p *Pool) recordSuccess(ctx context.Context, t storage.Task, now int64, result any) {
	payload, err := json.Marshal(result)
	if err != nil {
		p.log.Error("marshal task result", "task_id", t.ID, "name", t.Name, "error", err)
		p.recordFailure(ctx, t, now, fmt.Errorf("marshal result: %w", err))
		return
	}

	if t.Type == storage.TypeCron {
		next := p.cronNext(t, now)
		if err := p.store.CompleteCron(ctx, t.ID, next, payload); err != nil {
			p.log.Error("complete cron task", "task_id", t.ID, "error", err)
		}
		return
	}
	if err := p.store.Complete(ctx, t.ID, payload); err != nil {
		p.log.Error("complete task", "task_id", t.ID, "error", err)
	}
}

func (p *Pool) recordFailure(ctx context.Context, t storage.Task, now int64, runErr error) {
	p.log.Warn("task run failed", "task_id", t.ID, "name", t.Name, "error", runErr)

	if t.Type == storage.TypeCron {
		next := p.cronNext(t, now)
		if err := p.store.FailCron(ctx, t.ID, next, runErr.Error()); err != nil {
			p.log.Error("fail cron task", "task_id", t.ID, "error", err)
		}
		return
	}

	if retry.Exhausted(t.RetryCount, t.MaxRetries) {
		if err := p.store.Fail(ctx, t.ID, runErr.Error(), storage.StatusPermanentlyFailed, now); err != nil {
			p.log.Error("fail task permanently", "task_id", t.ID, "error", err)
		}
		return
	}

	delay := retry.Backoff(t.RetryCount, t.RetryInterval)
	next := now + delay
	if err := p.store.Fail(ctx, t.ID, runErr.Error(), storage.StatusPending, next); err != nil {
		p.log.Error("fail task for retry", "task_id", t.ID, "error", err)
	}
}

// cronNext computes the next occurrence for t's cron schedule, falling
// back to a minute out if the expression somehow no longer parses
// (config drift between enqueue time and run time).
func (p *Pool) cronNext(t storage.Task, now int64) int64 {
	next, err := cronexpr.Next(t.CronExpr, time.Unix(now, 0).UTC(), t.CronTZ)
	if err != nil {
		p.log.Error("compute next cron occurrence", "task_id", t.ID, "cron_expr", t.CronExpr, "error", err)
		return now + 60
	}
	return next.Unix()
}

func (p *Pool) failNoHandler(ctx context.Context, t storage.Task) {
	msg := fmt.Errorf("%w: no handler registered for task name %q", ErrNoHandler, t.Name).Error()
	p.log.Error("missing handler", "task_id", t.ID, "name", t.Name)
	now := time.Now().Unix()
	if t.Type == storage.TypeCron {
		next := p.cronNext(t, now)
		if err := p.store.FailCron(ctx, t.ID, next, msg); err != nil {
			p.log.Error("fail cron task (no handler)", "task_id", t.ID, "error", err)
		}
		return
	}
	if err := p.store.Fail(ctx, t.ID, msg, storage.StatusPermanentlyFailed, now); err != nil {
		p.log.Error("fail task (no handler)", "task_id", t.ID, "error", err)
	}
}

// Shutdown cancels every in-flight run and waits up to grace for them
// to unwind before returning.
func (p *Pool) Shutdown(grace time.Duration) {
	p.mu.Lock()
	for _, cancel := range p.cancels {
		cancel()
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(grace):
		p.log.Warn("pool shutdown grace period elapsed with runs still in flight", "in_flight", p.InFlight())
	}
}
