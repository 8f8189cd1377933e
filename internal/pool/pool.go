// Package pool provides three interchangeable thread pool
// implementations sharing one Spawn(job) contract: a naive pool that
// spawns a goroutine per job, a shared-queue pool with a fixed worker
// count that survives worker panics, and a pool backed by a third-party
// work-stealing library. They are drop-in replacements for one another
// at the call site.
package pool

import "github.com/devraj-nair/kvcask/internal/kverrors"

// poolBuildError wraps a construction failure in the ThreadPoolBuild
// error kind every pool constructor reports.
func poolBuildError(msg string) error {
	return kverrors.New(kverrors.ThreadPoolBuild, msg)
}

// Job is a nullary unit of work. It runs at most once and is moved to
// whichever worker picks it up.
type Job = func()

// Pool accepts jobs for execution by some number of workers. Whether
// Spawn can block is up to the implementation: NaivePool and
// SharedQueuePool never block the caller, while AntsPool waits for a
// free worker when all of them are busy.
type Pool interface {
	Spawn(job Job)
}
