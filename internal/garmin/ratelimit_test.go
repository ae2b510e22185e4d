package garmin

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWait_CanceledDuringPacing(t *testing.T) {
	r := NewRateLimiter()
	if err := r.Wait(context.Background()); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	// The second request lands inside the pacing interval, forcing a sleep.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}

	// The limiter must stay usable after a canceled wait.
	done := make(chan error, 1)
	go func() { done <- r.Wait(context.Background()) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("wait after cancellation: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("limiter deadlocked after canceled wait")
	}
}

func TestWait_CanceledWhileBudgetExhausted(t *testing.T) {
	r := NewRateLimiter()
	r.minuteUsage = r.minuteLimit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := r.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want context.DeadlineExceeded", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("wait did not return promptly on cancellation")
	}

	// Status takes the same lock; it hangs if the canceled wait left the
	// lock in a bad state.
	if minute, daily := r.Status(); minute != 0 || daily <= 0 {
		t.Errorf("status = (%d, %d) after canceled wait", minute, daily)
	}
}
