package pool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestAntsPoolRunsAllJobs(t *testing.T) {
	p, err := NewAntsPool(4)
	if err != nil {
		t.Fatalf("NewAntsPool() error = %v", err)
	}
	defer p.Close()

	const n = 500
	var wg sync.WaitGroup
	var count int64
	wg.Add(n)
	for i := 0; i < n; i++ {
		p.Spawn(func() {
			defer wg.Done()
			atomic.AddInt64(&count, 1)
		})
	}
	waitOrTimeout(t, &wg, 5*time.Second)
	if got := atomic.LoadInt64(&count); got != n {
		t.Fatalf("count = %d, want %d", got, n)
	}
}

func TestNewAntsPoolRejectsZeroSize(t *testing.T) {
	if _, err := NewAntsPool(0); err == nil {
		t.Fatal("NewAntsPool(0) succeeded, want error")
	}
}
