package backoff

import (
	"testing"
	"time"
)

func TestExponentialJitterGrowth(t *testing.T) {
	s := ExponentialJitterStrategy{}

	// With jitter 0 the sequence is deterministic and doubles.
	d0 := s.Calculate(0, 100*time.Millisecond, time.Minute, 2.0, 0)
	d1 := s.Calculate(1, 100*time.Millisecond, time.Minute, 2.0, 0)
	d2 := s.Calculate(2, 100*time.Millisecond, time.Minute, 2.0, 0)

	if d0 != 100*time.Millisecond {
		t.Errorf("Expected 100ms at attempt 0, got %v", d0)
	}
	if d1 != 200*time.Millisecond {
		t.Errorf("Expected 200ms at attempt 1, got %v", d1)
	}
	if d2 != 400*time.Millisecond {
		t.Errorf("Expected 400ms at attempt 2, got %v", d2)
	}
}

func TestExponentialJitterCappedAtMax(t *testing.T) {
	s := ExponentialJitterStrategy{}
	max := 500 * time.Millisecond

	for attempt := 0; attempt < 40; attempt++ {
		d := s.Calculate(attempt, 100*time.Millisecond, max, 2.0, 0.5)
		if d > max {
			t.Fatalf("Attempt %d exceeded max: %v", attempt, d)
		}
		if d < 0 {
			t.Fatalf("Attempt %d produced negative delay: %v", attempt, d)
		}
	}
}

func TestExponentialJitterNegativeAttempt(t *testing.T) {
	s := ExponentialJitterStrategy{}
	d := s.Calculate(-3, 100*time.Millisecond, time.Minute, 2.0, 0)
	if d != 100*time.Millisecond {
		t.Errorf("Expected negative attempt treated as 0, got %v", d)
	}
}

func TestJitterClamped(t *testing.T) {
	s := ExponentialJitterStrategy{}
	max := time.Second

	// Out-of-range jitter values must not break the bounds.
	for _, jitter := range []float64{-1, 0, 0.5, 1, 5} {
		d := s.Calculate(3, 50*time.Millisecond, max, 2.0, jitter)
		if d < 0 || d > max {
			t.Errorf("Jitter %v produced out-of-bounds delay %v", jitter, d)
		}
	}
}

func TestDecorrelatedJitterBounds(t *testing.T) {
	s := DecorrelatedJitterStrategy{}
	initial := 100 * time.Millisecond
	max := 2 * time.Second

	if d := s.Calculate(0, initial, max, 2.0, 0); d != initial {
		t.Errorf("Expected attempt 0 to return initial, got %v", d)
	}

	for attempt := 1; attempt < 20; attempt++ {
		for i := 0; i < 50; i++ {
			d := s.Calculate(attempt, initial, max, 2.0, 0)
			if d < initial || d > max {
				t.Fatalf("Attempt %d produced out-of-bounds delay %v", attempt, d)
			}
		}
	}
}
