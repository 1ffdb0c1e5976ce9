package scheduler

import "errors"

var (
	// ErrNoHandler is returned when a task's name has no registered handler.
	ErrNoHandler = errors.New("scheduler: no handler registered for task name")

	// ErrAlreadyStarted is returned by Start when called on a running pool.
	ErrAlreadyStarted = errors.New("scheduler: already started")

	// ErrNotStarted is returned by Stop when called before Start.
	ErrNotStarted = errors.New("scheduler: not started")

	// ErrTimeout marks a task run that exceeded its configured timeout.
	ErrTimeout = errors.New("scheduler: task timed out")
)
