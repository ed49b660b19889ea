package watermarkit

import "sync"

// Pool schedules independent page rendering tasks. A pool is owned by the
// caller: the pipeline submits work to it and waits for completion, but
// never shuts it down, so one pool can serve many Apply runs.
type Pool interface {
	Submit(task func())
}

// WorkerPool is a fixed-size goroutine pool implementing Pool.
type WorkerPool struct {
	tasks chan func()
	wg    sync.WaitGroup
}

// NewWorkerPool starts a pool with the given number of workers.
// Close must be called to release them.
func NewWorkerPool(workers int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	p := &WorkerPool{tasks: make(chan func())}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer p.wg.Done()
			for task := range p.tasks {
				task()
			}
		}()
	}
	return p
}

// Submit enqueues a task. It blocks until a worker picks the task up.
func (p *WorkerPool) Submit(task func()) {
	p.tasks <- task
}

// Close stops accepting tasks and waits for the workers to drain.
func (p *WorkerPool) Close() {
	close(p.tasks)
	p.wg.Wait()
}
