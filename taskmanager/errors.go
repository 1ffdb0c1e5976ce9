package taskmanager

import "errors"

var (
	// ErrInvalidCronExpr is returned by Cron when the supplied expression
	// fails validation.
	ErrInvalidCronExpr = errors.New("taskmanager: invalid cron expression")

	// ErrEmptyName is returned when a task or handler name is empty.
	ErrEmptyName = errors.New("taskmanager: task name must not be empty")

	// ErrTaskNotFound is returned by GetTask when no task has the given ID.
	ErrTaskNotFound = errors.New("taskmanager: task not found")

	// ErrNotPausable is returned by Pause when the task is not currently
	// pending.
	ErrNotPausable = errors.New("taskmanager: task is not in a pausable state")

	// ErrNotResumable is returned by Resume when the task is not
	// currently paused.
	ErrNotResumable = errors.New("taskmanager: task is not paused")
)
