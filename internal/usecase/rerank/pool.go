package rerank

import (
	"sync"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// Pool is a bounded worker pool with a bounded queue. Submission never
// blocks: a full queue rejects with domain.ErrPoolSaturated so callers can
// short-circuit instead of piling up.
type Pool struct {
	tasks chan func()
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewPool starts workers goroutines draining a queue of queueSize tasks.
func NewPool(workers, queueSize int) *Pool {
	p := &Pool{tasks: make(chan func(), queueSize)}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for task := range p.tasks {
				task()
			}
		}()
	}
	return p
}

// Submit enqueues a task. Returns domain.ErrPoolSaturated when the queue is
// full or the pool is closed.
func (p *Pool) Submit(task func()) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return domain.ErrPoolSaturated
	}
	p.mu.Unlock()

	select {
	case p.tasks <- task:
		return nil
	default:
		return domain.ErrPoolSaturated
	}
}

// Close stops accepting tasks and waits for in-flight ones to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	close(p.tasks)
	p.wg.Wait()
}
