package pool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNaivePoolRunsAllJobs(t *testing.T) {
	p, err := NewNaivePool(8)
	if err != nil {
		t.Fatalf("NewNaivePool() error = %v", err)
	}

	const n = 200
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
