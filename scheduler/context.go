package scheduler

import (
	"context"

	"github.com/nextlevelbuilder/taskcore/storage"
)

// TaskContext is the per-run view of a claimed task a Handler receives.
// It exposes only what a handler needs to do its work; it never exposes
// the storage layer directly.
type TaskContext struct {
	ID         int64
	Name       string
	Type       storage.Type
	Priority   int
	Payload    []byte
	RetryCount int
	MaxRetries int
	// RunID uniquely identifies this execution attempt, for log
	// correlation across a retried task's multiple runs.
	RunID string

	ctx context.Context
}

// Context returns the run's cancellation context. Handlers that do I/O
// should select on Done() and return promptly when it fires; once the
// handler returns after its deadline, the pool records the run as a
// timeout failure regardless of what the handler returned.
func (t *TaskContext) Context() context.Context {
	return t.ctx
}

// CheckTimeout reports whether the run's deadline has already passed,
// wrapping ErrTimeout so long-running handlers that can't select on
// Context().Done() (e.g. inside a tight CPU loop) can poll it between
// steps and return promptly instead of running to natural completion.
func (t *TaskContext) CheckTimeout() error {
	if t.ctx.Err() != nil {
		return ErrTimeout
	}
	return nil
}

// Handler executes one run of a claimed task. Its return value, if
// non-nil, is JSON-marshaled and stored as the task's result. A
// returned error fails the run, triggering the retry/backoff policy
// for async tasks or simply being recorded for cron tasks.
type Handler func(tc *TaskContext) (any, error)
