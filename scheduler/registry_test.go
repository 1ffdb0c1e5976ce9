package scheduler

import "testing"

func TestRegistryUseAndLookup(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Lookup("echo"); ok {
		t.Fatal("Lookup on empty registry found a handler")
	}

	called := false
	r.Use("echo", func(tc *TaskContext) (any, error) {
		called = true
		return nil, nil
	})

	fn, ok := r.Lookup("echo")
	if !ok {
		t.Fatal("Lookup after Use: not found")
	}
	if _, err := fn(&TaskContext{}); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !called {
		t.Error("registered handler was not the one invoked")
	}
}

func TestRegistryUseReplaces(t *testing.T) {
	r := NewRegistry()
	r.Use("echo", func(tc *TaskContext) (any, error) { return 1, nil })
	r.Use("echo", func(tc *TaskContext) (any, error) { return 2, nil })

	fn, _ := r.Lookup("echo")
	got, _ := fn(&TaskContext{})
	if got != 2 {
		t.Errorf("Lookup returned stale handler: got %v, want 2", got)
	}
}

func TestRegistryListNames(t *testing.T) {
	r := NewRegistry()
	r.Use("a", func(tc *TaskContext) (any, error) { return nil, nil })
	r.Use("b", func(tc *TaskContext) (any, error) { return nil, nil })

	names := r.ListNames()
	if len(names) != 2 {
		t.Fatalf("ListNames() = %v, want 2 entries", names)
	}
	seen := map[string]bool{}
	for _, n := range names {
		seen[n] = true
	}
	if !seen["a"] || !seen["b"] {
		t.Errorf("ListNames() = %v, want to contain a and b", names)
	}
}
