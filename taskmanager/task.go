// Package taskmanager is the public entry point for the durable task
// manager: registering handlers, enqueueing async and cron tasks, and
// querying their state. It composes storage.Storage for persistence
// and scheduler.Scheduler for execution.
package taskmanager

import (
	"github.com/nextlevelbuilder/taskcore/scheduler"
	"github.com/nextlevelbuilder/taskcore/storage"
)

// Task is the public view of a persisted unit of work. It is a type
// alias for storage.Task so callers never need to import the storage
// package directly.
type Task = storage.Task

// TaskType distinguishes one-shot async tasks from recurring cron tasks.
type TaskType = storage.Type

const (
	TypeAsync = storage.TypeAsync
	TypeCron  = storage.TypeCron
)

// TaskStatus is the task FSM state.
type TaskStatus = storage.Status

const (
	StatusPending           = storage.StatusPending
	StatusRunning           = storage.StatusRunning
	StatusCompleted         = storage.StatusCompleted
	StatusPermanentlyFailed = storage.StatusPermanentlyFailed
	StatusPaused            = storage.StatusPaused
)

// TaskContext is the per-run argument passed to a Handler.
type TaskContext = scheduler.TaskContext

// Handler executes one run of a claimed task.
type Handler = scheduler.Handler
