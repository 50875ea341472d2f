package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestMapPreservesOrder(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}
	results := Map(context.Background(), 3, items, func(_ context.Context, n int) (int, error) {
		// finish out of order
		time.Sleep(time.Duration(10-n) * time.Millisecond)
		return n * n, nil
	})

	if len(results) != len(items) {
		t.Fatalf("Expected %d results, got %d", len(items), len(results))
	}
	for i, r := range results {
		if r.Index != i {
			t.Errorf("Result %d has index %d", i, r.Index)
		}
		if r.Err != nil {
			t.Errorf("Result %d unexpected error: %v", i, r.Err)
		}
		if r.Value != items[i]*items[i] {
			t.Errorf("Result %d = %d, want %d", i, r.Value, items[i]*items[i])
		}
	}
}

func TestMapIsolatesFailures(t *testing.T) {
	boom := errors.New("boom")
	items := []string{"ok", "fail", "panic", "ok"}

	results := Map(context.Background(), 2, items, func(_ context.Context, s string) (string, error) {
		switch s {
		case "fail":
			return "", boom
		case "panic":
			panic("tile exploded")
		}
		return s + "!", nil
	})

	if !errors.Is(results[1].Err, boom) {
		t.Errorf("Expected boom in slot 1, got %v", results[1].Err)
	}

	var pe *PanicError
	if !errors.As(results[2].Err, &pe) {
		t.Fatalf("Expected PanicError in slot 2, got %v", results[2].Err)
	}
	if pe.Value != "tile exploded" {
		t.Errorf("Unexpected panic value %v", pe.Value)
	}

	for _, i := range []int{0, 3} {
		if results[i].Err != nil || results[i].Value != "ok!" {
			t.Errorf("Sibling %d affected: %+v", i, results[i])
		}
	}

	if failed := Errors(results); len(failed) != 2 {
		t.Errorf("Expected 2 failures, got %d", len(failed))
	}
}

func TestMapRespectsLimit(t *testing.T) {
	var inFlight, peak int32
	items := make([]int, 20)

	Map(context.Background(), 4, items, func(_ context.Context, _ int) (struct{}, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return struct{}{}, nil
	})

	if peak > 4 {
		t.Errorf("Expected at most 4 concurrent calls, saw %d", peak)
	}
}

func TestMapCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int32
	results := Map(ctx, 2, []int{1, 2, 3}, func(_ context.Context, n int) (int, error) {
		atomic.AddInt32(&calls, 1)
		return n, nil
	})

	if calls != 0 {
		t.Errorf("Expected no calls after cancel, got %d", calls)
	}
	for _, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", r.Err)
		}
	}
}

func TestMapEmpty(t *testing.T) {
	results := Map(context.Background(), 0, []int(nil), func(_ context.Context, n int) (int, error) {
		return n, nil
	})
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}
