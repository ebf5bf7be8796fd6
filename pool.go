package mdforge

import (
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps pooled normalizers; beyond this, extra workers only
	// contend on memory bandwidth.
	MaxPoolSize = 16

	// cpuDivisor leaves headroom for the caller's own goroutines.
	cpuDivisor = 1
)

// NormalizerPool manages Normalizer instances for parallel batch processing.
// Instances are created lazily on first acquire.
type NormalizerPool struct {
	size    int
	opts    []Option
	sem     chan *Normalizer
	mu      sync.Mutex
	created int
	closed  bool
}

// NewNormalizerPool creates a pool with capacity for n Normalizer instances,
// each built with the given options. Instances are created lazily when
// acquired, not at pool creation.
func NewNormalizerPool(n int, opts ...Option) *NormalizerPool {
	if n < 1 {
		n = 1
	}
	return &NormalizerPool{
		size: n,
		opts: opts,
		sem:  make(chan *Normalizer, n),
	}
}

// Acquire gets a normalizer from the pool, creating one if capacity allows.
// Blocks if all instances are in use.
func (p *NormalizerPool) Acquire() (*Normalizer, error) {
	select {
	case n := <-p.sem:
		return n, nil
	default:
	}

	p.mu.Lock()
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		n, err := NewNormalizer(p.opts...)
		if err != nil {
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			return nil, err
		}
		return n, nil
	}
	p.mu.Unlock()

	return <-p.sem, nil
}

// Release returns a normalizer to the pool.
func (p *NormalizerPool) Release(n *Normalizer) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	p.sem <- n
}

// Close marks the pool closed. Held instances are simply dropped; a
// Normalizer holds no external resources.
func (p *NormalizerPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.sem)
}

// Size returns the pool capacity.
func (p *NormalizerPool) Size() int {
	return p.size
}

// ResolvePoolSize determines the pool size to use.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS reflects container CPU limits when automaxprocs is loaded.
	n := runtime.GOMAXPROCS(0) / cpuDivisor
	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
