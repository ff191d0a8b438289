package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_SharesConcurrentCalls(t *testing.T) {
	sf := NewSingleFlight()

	var calls atomic.Int32
	fn := func() (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "shared", nil
	}

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := sf.Do("key", fn)
			if err != nil {
				t.Errorf("Do() error = %v", err)
			}
			if v != "shared" {
				t.Errorf("Do() = %v, want shared", v)
			}
		}()
	}
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("fn called %d times, want 1", got)
	}
}

func TestSingleFlight_RunsAgainAfterCompletion(t *testing.T) {
	sf := NewSingleFlight()

	var calls atomic.Int32
	fn := func() (any, error) {
		return calls.Add(1), nil
	}

	if v, _ := sf.Do("key", fn); v != int32(1) {
		t.Fatalf("first Do() = %v, want 1", v)
	}
	if v, _ := sf.Do("key", fn); v != int32(2) {
		t.Fatalf("second Do() = %v, want 2", v)
	}
}
