package pool

// NaivePool spawns one goroutine per job and never reuses workers. It
// satisfies Pool but has none of the shared-queue's panic-resilience
// design; jobs run fully independently of one another.
type NaivePool struct{}

// NewNaivePool returns a NaivePool. The requested size is accepted for
// interface symmetry with the other pool constructors but has no effect:
// a naive pool always spawns exactly one goroutine per job.
func NewNaivePool(size int) (*NaivePool, error) {
	return &NaivePool{}, nil
}

func (*NaivePool) Spawn(job Job) {
	go job()
}

var _ Pool = (*NaivePool)(nil)
