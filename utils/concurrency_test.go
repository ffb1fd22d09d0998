package utils

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestURLSetNoDuplicates(t *testing.T) {
	s := NewURLSet()

	if !s.Add("https://example.com/p/1") {
		t.Error("first Add should return true")
	}
	if s.Add("https://example.com/p/1") {
		t.Error("second Add of same URL should return false")
	}
	if !s.Contains("https://example.com/p/1") {
		t.Error("Contains should report the added URL")
	}
	if s.Size() != 1 {
		t.Errorf("size: got %d, want 1", s.Size())
	}
}

func TestURLSetConcurrency(t *testing.T) {
	s := NewURLSet()
	var added int64

	pool := NewWorkerPool(10, 0)
	for i := 0; i < 100; i++ {
		pool.Submit(func() {
			if s.Add("https://example.com/same") {
				atomic.AddInt64(&added, 1)
			}
		})
	}
	pool.Wait()

	if added != 1 {
		t.Errorf("expected exactly 1 successful add, got %d", added)
	}
}

func TestWorkerPoolRateLimit(t *testing.T) {
	const rateLimitMs = 100
	pool := NewWorkerPool(1, rateLimitMs)

	var (
		mu         sync.Mutex
		timestamps []time.Time
	)
	for i := 0; i < 3; i++ {
		pool.Submit(func() {
			mu.Lock()
			timestamps = append(timestamps, time.Now())
			mu.Unlock()
		})
	}
	pool.Wait()

	// allow a little scheduler slack around the limiter's reservation times
	min := time.Duration(rateLimitMs)*time.Millisecond - 15*time.Millisecond
	for i := 1; i < len(timestamps); i++ {
		if gap := timestamps[i].Sub(timestamps[i-1]); gap < min {
			t.Errorf("gap between job %d and %d: %v < minimum %v", i-1, i, gap, min)
		}
	}
}

func TestMapPreservesOrder(t *testing.T) {
	pool := NewWorkerPool(4, 0)
	in := []int{5, 4, 3, 2, 1, 0}

	out := Map(pool, in, func(_ int, n int) int {
		time.Sleep(time.Duration(n) * time.Millisecond)
		return n * n
	})

	want := []int{25, 16, 9, 4, 1, 0}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %d; want %d", i, out[i], want[i])
		}
	}
}
