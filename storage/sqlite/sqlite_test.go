package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/nextlevelbuilder/taskcore/storage"
)

func newTestStore(t *testing.T) storage.Storage {
	t.Helper()
	s, err := Open("sqlite://")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Setup(context.Background()); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAndGetByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	task := &storage.Task{Name: "job", Type: storage.TypeAsync, NextRunTime: time.Now().Unix(), MaxRetries: 3, CreatedAt: time.Now().Unix()}
	id, err := s.Insert(ctx, task)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := s.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != storage.StatusPending {
		t.Errorf("Status = %s, want %s", got.Status, storage.StatusPending)
	}
	if got.Name != "job" {
		t.Errorf("Name = %s, want job", got.Name)
	}
}

func TestClaimReadyOnlyClaimsDueTasks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().Unix()

	dueID, err := s.Insert(ctx, &storage.Task{Name: "due", Type: storage.TypeAsync, NextRunTime: now - 10, MaxRetries: 3, CreatedAt: now})
	if err != nil {
		t.Fatalf("Insert due: %v", err)
	}
	_, err = s.Insert(ctx, &storage.Task{Name: "future", Type: storage.TypeAsync, NextRunTime: now + 3600, MaxRetries: 3, CreatedAt: now})
	if err != nil {
		t.Fatalf("Insert future: %v", err)
	}

	claimed, err := s.ClaimReady(ctx, now, 10)
	if err != nil {
		t.Fatalf("ClaimReady: %v", err)
	}
	if len(claimed) != 1 {
		t.Fatalf("ClaimReady returned %d tasks, want 1", len(claimed))
	}
	if claimed[0].ID != dueID {
		t.Errorf("claimed id = %d, want %d", claimed[0].ID, dueID)
	}
	if claimed[0].Status != storage.StatusRunning {
		t.Errorf("claimed status = %s, want %s", claimed[0].Status, storage.StatusRunning)
	}

	// A second claim must not re-select the same row: it is no longer pending.
	claimedAgain, err := s.ClaimReady(ctx, now, 10)
	if err != nil {
		t.Fatalf("ClaimReady (second): %v", err)
	}
	if len(claimedAgain) != 0 {
		t.Fatalf("second ClaimReady returned %d tasks, want 0", len(claimedAgain))
	}
}

func TestClaimReadyOrdersByPriorityThenAge(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().Unix()

	lowID, err := s.Insert(ctx, &storage.Task{Name: "low", Type: storage.TypeAsync, Priority: 0, NextRunTime: now, MaxRetries: 3, CreatedAt: now})
	if err != nil {
		t.Fatalf("Insert low: %v", err)
	}
	highID, err := s.Insert(ctx, &storage.Task{Name: "high", Type: storage.TypeAsync, Priority: 10, NextRunTime: now, MaxRetries: 3, CreatedAt: now})
	if err != nil {
		t.Fatalf("Insert high: %v", err)
	}

	claimed, err := s.ClaimReady(ctx, now, 10)
	if err != nil {
		t.Fatalf("ClaimReady: %v", err)
	}
	if len(claimed) != 2 {
		t.Fatalf("ClaimReady returned %d tasks, want 2", len(claimed))
	}
	if claimed[0].ID != highID || claimed[1].ID != lowID {
		t.Errorf("claim order = [%d, %d], want [%d, %d] (priority desc)", claimed[0].ID, claimed[1].ID, highID, lowID)
	}
}

func TestCompleteTransition(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().Unix()

	id, err := s.Insert(ctx, &storage.Task{Name: "job", Type: storage.TypeAsync, NextRunTime: now, MaxRetries: 3, CreatedAt: now})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := s.ClaimReady(ctx, now, 10); err != nil {
		t.Fatalf("ClaimReady: %v", err)
	}

	if err := s.Complete(ctx, id, []byte(`"ok"`)); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	task, err := s.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if task.Status != storage.StatusCompleted {
		t.Errorf("Status after Complete = %s, want %s", task.Status, storage.StatusCompleted)
	}
	if string(task.Result) != `"ok"` {
		t.Errorf("Result = %s, want \"ok\"", task.Result)
	}
}

func TestPauseResumeGuardsAgainstWrongState(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().Unix()

	id, err := s.Insert(ctx, &storage.Task{Name: "job", Type: storage.TypeAsync, NextRunTime: now, MaxRetries: 3, CreatedAt: now})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if err := s.Resume(ctx, id); err != nil {
		t.Fatalf("Resume on pending task: %v", err)
	}
	task, err := s.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if task.Status != storage.StatusPending {
		t.Errorf("Resume on a pending task must be a no-op, got status %s", task.Status)
	}

	if err := s.Pause(ctx, id); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	task, err = s.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if task.Status != storage.StatusPaused {
		t.Errorf("Status after Pause = %s, want %s", task.Status, storage.StatusPaused)
	}

	claimed, err := s.ClaimReady(ctx, now, 10)
	if err != nil {
		t.Fatalf("ClaimReady: %v", err)
	}
	if len(claimed) != 0 {
		t.Errorf("ClaimReady claimed %d paused tasks, want 0", len(claimed))
	}
}

func TestResetAbandonedReturnsRunningTasksToPending(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().Unix()

	id, err := s.Insert(ctx, &storage.Task{Name: "job", Type: storage.TypeAsync, NextRunTime: now, MaxRetries: 3, CreatedAt: now})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := s.ClaimReady(ctx, now, 10); err != nil {
		t.Fatalf("ClaimReady: %v", err)
	}

	n, err := s.ResetAbandoned(ctx, now)
	if err != nil {
		t.Fatalf("ResetAbandoned: %v", err)
	}
	if n != 1 {
		t.Fatalf("ResetAbandoned reset %d tasks, want 1", n)
	}

	task, err := s.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if task.Status != storage.StatusPending {
		t.Errorf("Status after ResetAbandoned = %s, want %s", task.Status, storage.StatusPending)
	}
}

func TestCountByStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().Unix()

	for i := 0; i < 3; i++ {
		if _, err := s.Insert(ctx, &storage.Task{Name: "job", Type: storage.TypeAsync, NextRunTime: now, MaxRetries: 3, CreatedAt: now}); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	counts, err := s.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if counts[storage.StatusPending] != 3 {
		t.Errorf("counts[pending] = %d, want 3", counts[storage.StatusPending])
	}
}
