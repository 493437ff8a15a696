// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// workerPool runs raster jobs on a fixed set of goroutines.
//
// Each worker owns a queue; a submitted job goes to the shortest queue.
// Wait blocks until every submitted job has finished.
type workerPool struct {
	queues  []chan func()
	done    chan struct{}
	workers sync.WaitGroup
	pending sync.WaitGroup
	running atomic.Bool
}

// newWorkerPool starts a pool. If workers is 0 or negative, GOMAXPROCS is used.
func newWorkerPool(workers int) *workerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	queueSize := max(workers*4, 8)

	p := &workerPool{
		queues: make([]chan func(), workers),
		done:   make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), queueSize)
	}
	p.running.Store(true)

	p.workers.Add(workers)
	for i := range workers {
		go p.worker(p.queues[i])
	}
	return p
}

func (p *workerPool) worker(queue chan func()) {
	defer p.workers.Done()
	for {
		select {
		case job := <-queue:
			job()
		case <-p.done:
			// Drain what was queued before Close.
			for {
				select {
				case job := <-queue:
					job()
				default:
					return
				}
			}
		}
	}
}

// Submit queues fn. On a closed pool fn runs on the caller.
func (p *workerPool) Submit(fn func()) {
	if fn == nil {
		return
	}
	if !p.running.Load() {
		fn()
		return
	}

	p.pending.Add(1)
	job := func() {
		defer p.pending.Done()
		fn()
	}

	idx := 0
	for i := 1; i < len(p.queues); i++ {
		if len(p.queues[i]) < len(p.queues[idx]) {
			idx = i
		}
	}
	select {
	case p.queues[idx] <- job:
	case <-p.done:
		job()
	}
}

// Wait blocks until all submitted jobs have completed.
func (p *workerPool) Wait() {
	p.pending.Wait()
}

// Workers returns the number of workers.
func (p *workerPool) Workers() int { return len(p.queues) }

// Close finishes queued work and stops the workers. Safe to call twice.
func (p *workerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.workers.Wait()
}
