package pool

import (
	"log/slog"

	"github.com/panjf2000/ants/v2"

	"github.com/devraj-nair/kvcask/internal/kverrors"
)

// AntsPool wraps github.com/panjf2000/ants, a goroutine pool library, as
// a Pool: a real, external work-stealing implementation that satisfies
// the same Spawn contract as the hand-written pools but without their
// panic-respawn semantics.
type AntsPool struct {
	inner *ants.Pool
}

// NewAntsPool builds an AntsPool with the given worker capacity.
func NewAntsPool(size int) (*AntsPool, error) {
	if size < 1 {
		return nil, poolBuildError("worker count must be at least 1")
	}
	p, err := ants.NewPool(size)
	if err != nil {
		return nil, kverrors.Wrap(kverrors.ThreadPoolBuild, "build ants pool", err)
	}
	return &AntsPool{inner: p}, nil
}

// Spawn submits job to the underlying ants pool. Submission errors (the
// pool closed, or is at capacity under a blocking policy) are logged
// rather than returned, keeping Spawn's signature identical across every
// Pool implementation.
func (a *AntsPool) Spawn(job Job) {
	if err := a.inner.Submit(job); err != nil {
		slog.Error("pool: ants submit failed", "error", err)
	}
}

// Close releases the underlying pool's workers.
func (a *AntsPool) Close() {
	a.inner.Release()
}

var _ Pool = (*AntsPool)(nil)
