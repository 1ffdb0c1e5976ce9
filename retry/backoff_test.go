package retry

import "testing"

func TestBackoffFlat(t *testing.T) {
	for n := 1; n <= 5; n++ {
		if got := Backoff(n, 30); got != 30 {
			t.Errorf("Backoff(%d, 30) = %d, want 30", n, got)
		}
	}
}

func TestBackoffExponentialCurve(t *testing.T) {
	want := map[int]int64{1: 1, 2: 2, 3: 4, 4: 8, 5: 16, 6: 32, 7: 60, 8: 60}
	for n, exp := range want {
		if got := Backoff(n, 0); got != exp {
			t.Errorf("Backoff(%d, 0) = %d, want %d", n, got, exp)
		}
	}
}

func TestBackoffClampsLowN(t *testing.T) {
	if got := Backoff(0, 0); got != 1 {
		t.Errorf("Backoff(0, 0) = %d, want 1", got)
	}
}

func TestExhausted(t *testing.T) {
	if Exhausted(2, 3) {
		t.Error("Exhausted(2, 3) = true, want false")
	}
	if Exhausted(3, 3) {
		t.Error("Exhausted(3, 3) = true, want false")
	}
	if !Exhausted(4, 3) {
		t.Error("Exhausted(4, 3) = false, want true")
	}
}
