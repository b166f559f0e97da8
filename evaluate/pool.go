package evaluate

import (
	"fmt"
	"sync"

	"github.com/swdee/go-posemetrics/metrics"
)

// CreateFunc returns a fresh metric, every call must return a metric of the
// same kind and configuration so their totals can be merged
type CreateFunc func() (metrics.Metric, error)

// Pool holds one metric accumulator per worker
type Pool struct {
	// pool of metrics
	metrics chan metrics.Metric
	// size of pool
	size  int
	close sync.Once
}

// NewPool creates a pool of size metrics built by create
func NewPool(size int, create CreateFunc) (*Pool, error) {

	if size < 1 {
		return nil, fmt.Errorf("pool size must be at least 1, got %d", size)
	}

	p := &Pool{
		metrics: make(chan metrics.Metric, size),
		size:    size,
	}

	for i := 0; i < size; i++ {
		m, err := create()

		if err != nil {
			p.Close()
			return nil, fmt.Errorf("failed to create metric %d: %w", i, err)
		}

		p.Return(m)
	}

	return p, nil
}

// Size returns the number of metrics the pool was created with
func (p *Pool) Size() int {
	return p.size
}

// Get takes a metric from the pool, blocking until one is available
func (p *Pool) Get() metrics.Metric {
	return <-p.metrics
}

// Return a metric to the pool.  Return must not be called after Close.
func (p *Pool) Return(m metrics.Metric) {
	select {
	case p.metrics <- m:
	default:
		// pool is full
	}
}

// Close the pool and return the metrics that were in it.  Only the first
// call returns metrics.
func (p *Pool) Close() []metrics.Metric {

	var out []metrics.Metric

	p.close.Do(func() {
		close(p.metrics)

		for next := range p.metrics {
			out = append(out, next)
		}
	})

	return out
}

// Merged closes the pool and merges the totals of all its metrics into the
// first one
func (p *Pool) Merged() (metrics.Metric, error) {

	all := p.Close()

	if len(all) == 0 {
		return nil, fmt.Errorf("pool is empty")
	}

	total := all[0]

	for i, m := range all[1:] {
		if err := total.Merge(m); err != nil {
			return nil, fmt.Errorf("failed to merge worker %d: %w", i+1, err)
		}
	}

	return total, nil
}
