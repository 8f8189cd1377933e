package pool

import (
	"log/slog"
	"sync"
)

// SharedQueuePool runs n workers pulling jobs off one shared, unbounded
// queue. Spawn never blocks: jobs are appended to a growable slice
// guarded by a mutex, and workers wait on a condition variable rather
// than a fixed-capacity channel. A worker locks only long enough to pop
// one job, then releases the lock before running it, so job execution is
// never serialized by the queue itself.
type SharedQueuePool struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Job
	closed bool
}

// NewSharedQueuePool builds a pool of n worker goroutines. n must be at
// least 1.
func NewSharedQueuePool(n int) (*SharedQueuePool, error) {
	if n < 1 {
		return nil, poolBuildError("worker count must be at least 1")
	}

	p := &SharedQueuePool{}
	p.cond = sync.NewCond(&p.mu)

	for i := 0; i < n; i++ {
		p.spawnWorker()
	}
	return p, nil
}

// Spawn enqueues job for any worker to run. It never blocks: the queue
// grows without bound.
func (p *SharedQueuePool) Spawn(job Job) {
	p.mu.Lock()
	p.queue = append(p.queue, job)
	p.mu.Unlock()
	p.cond.Signal()
}

// Close stops accepting new work and lets every idle worker exit its
// recv loop once the queue drains. It does not wait for in-flight jobs.
func (p *SharedQueuePool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cond.Broadcast()
}

// spawnWorker starts one worker goroutine. If the job it runs panics,
// the panic unwinds out of the loop, the deferred recover catches it,
// logs it, and spawns a fresh worker resuming the same queue — so the
// pool's parallelism is restored without ever poisoning the shared
// state. A clean shutdown (Close) exits the loop normally instead, and
// no replacement is spawned.
func (p *SharedQueuePool) spawnWorker() {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("pool: worker panicked, respawning", "panic", r)
				p.spawnWorker()
			}
		}()

		for {
			job, ok := p.next()
			if !ok {
				return
			}
			job()
		}
	}()
}

// next locks only long enough to pop one job (or observe shutdown).
func (p *SharedQueuePool) next() (Job, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.queue) == 0 && !p.closed {
		p.cond.Wait()
	}
	if len(p.queue) == 0 && p.closed {
		return nil, false
	}

	job := p.queue[0]
	p.queue = p.queue[1:]
	return job, true
}

var _ Pool = (*SharedQueuePool)(nil)
