package taskmanager

import (
	"testing"

	"github.com/nextlevelbuilder/taskcore/storage"
)

func TestValidTransition(t *testing.T) {
	cases := []struct {
		from, to storage.Status
		want     bool
	}{
		{storage.StatusPending, storage.StatusRunning, true},
		{storage.StatusPending, storage.StatusPaused, true},
		{storage.StatusPending, storage.StatusCompleted, false},
		{storage.StatusRunning, storage.StatusCompleted, true},
		{storage.StatusRunning, storage.StatusPermanentlyFailed, true},
		{storage.StatusRunning, storage.StatusPending, true},
		{storage.StatusPaused, storage.StatusPending, true},
		{storage.StatusPaused, storage.StatusRunning, false},
		{storage.StatusCompleted, storage.StatusPending, false},
		{storage.StatusPermanentlyFailed, storage.StatusPending, false},
	}
	for _, c := range cases {
		if got := ValidTransition(c.from, c.to); got != c.want {
			t.Errorf("ValidTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}
