// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package threadlocal

import (
	"runtime"
	"sync"
)

var (
	exitMu    sync.Mutex
	exitHooks = make(map[int64][]func())
)

// onExit registers fn to run when the thread id exits through Go or Run.
func onExit(id int64, fn func()) {
	exitMu.Lock()
	exitHooks[id] = append(exitHooks[id], fn)
	exitMu.Unlock()
}

// exit runs and forgets the hooks of thread id, most recent first.
func exit(id int64) {
	exitMu.Lock()
	hooks := exitHooks[id]
	delete(exitHooks, id)
	exitMu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
}

// Go runs fn on a new goroutine locked to its own OS thread.
//
// When fn returns (or panics), every Local value created on that thread is
// freed. The goroutine exits still locked, which makes the runtime
// terminate the thread instead of reusing it.
func Go(fn func()) {
	go locked(fn, nil)
}

// Run is like Go but waits for fn and the thread teardown to complete.
func Run(fn func()) {
	done := make(chan struct{})
	go locked(fn, done)
	<-done
}

func locked(fn func(), done chan struct{}) {
	if done != nil {
		defer close(done)
	}
	runtime.LockOSThread()
	id := ThreadID()
	defer exit(id)
	fn()
}
