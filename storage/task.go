// Package storage defines the persistence contract for the task manager
// core and the Task record it operates over. Concrete engines
// (storage/sqlite, storage/mysql, storage/postgres) implement Storage.
package storage

// Type distinguishes a one-shot task from a recurring cron task.
type Type string

const (
	TypeAsync Type = "async"
	TypeCron  Type = "cron"
)

// Status is the Task FSM state. See package taskmanager for the legal
// transition graph.
type Status string

const (
	StatusPending           Status = "pending"
	StatusRunning           Status = "running"
	StatusCompleted         Status = "completed"
	StatusPermanentlyFailed Status = "permanently_failed"
	StatusPaused            Status = "paused"
)

// Task is the canonical persistent representation of a unit of work.
// Payload, Result and Error are opaque text blobs from the store's
// point of view; the core treats Payload/Result as JSON but never
// interprets them itself.
type Task struct {
	ID             int64
	Name           string
	Type           Type
	Status         Status
	Priority       int
	Payload        []byte
	CronExpr       string // non-empty iff Type == TypeCron
	CronTZ         string // optional IANA zone for cron evaluation
	NextRunTime    int64  // unix seconds
	LastActiveTime int64  // unix seconds, updated on claim
	Timeout        int    // seconds
	RetryCount     int
	MaxRetries     int
	RetryInterval  int // seconds, base backoff
	CreatedAt      int64
	Result         []byte
	Error          string
}
