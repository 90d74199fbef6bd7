package worker

import (
	"context"
	"sync"

	"github.com/reliefops/go-disaster-response/internal/models"
)

// Task is one unit of re-scoring work: a report snapshot taken during a
// sweep.
type Task struct {
	Report models.Report
}

type ProcessFunc func(ctx context.Context, task Task) error

// Pool fans report tasks out to a fixed set of workers over a bounded
// channel.
type Pool struct {
	numWorkers int
	tasks      chan Task
	processor  ProcessFunc
	wg         sync.WaitGroup
}

func NewPool(numWorkers int, bufferSize int, processor ProcessFunc) *Pool {
	return &Pool{
		numWorkers: numWorkers,
		tasks:      make(chan Task, bufferSize),
		processor:  processor,
	}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 1; i <= p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			p.processor(ctx, task)
		}
	}
}

func (p *Pool) Submit(task Task) {
	p.tasks <- task
}

// Stop closes the task channel and waits for the workers to drain.
func (p *Pool) Stop() {
	close(p.tasks)
	p.wg.Wait()
}
