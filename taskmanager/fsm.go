package taskmanager

import "github.com/nextlevelbuilder/taskcore/storage"

// legalTransitions enumerates the Task FSM's edges. It exists to keep
// the graph documented in one place and to let tests assert the core
// never produces an edge outside it; the scheduler and storage adapters
// enforce it implicitly through their SQL rather than consulting this
// table at run time.
var legalTransitions = map[storage.Status][]storage.Status{
	storage.StatusPending: {
		storage.StatusRunning,
		storage.StatusPaused,
	},
	storage.StatusRunning: {
		storage.StatusCompleted,
		storage.StatusPermanentlyFailed,
		storage.StatusPending, // retry, or a cron task cycling back
	},
	storage.StatusPaused: {
		storage.StatusPending,
	},
	storage.StatusCompleted:         {},
	storage.StatusPermanentlyFailed: {},
}

// ValidTransition reports whether moving a task from 'from' to 'to' is
// a legal FSM edge.
func ValidTransition(from, to storage.Status) bool {
	for _, candidate := range legalTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}
