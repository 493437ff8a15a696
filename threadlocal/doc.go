// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package threadlocal provides lazily initialized values with one instance
// per OS thread.
//
// Go has no thread-local storage. Rendering contexts, however, are bound to
// OS threads, and backend bookkeeping such as "which context is current
// here" must follow the thread rather than the goroutine. A [Local] keys its
// values by the calling thread id, so callers must be locked to their thread
// for the value to be stable:
//
//	var scratch = threadlocal.Local[*bytes.Buffer]{
//		New: func() *bytes.Buffer { return new(bytes.Buffer) },
//	}
//
//	threadlocal.Run(func() {
//		buf := scratch.Get() // constructed once for this thread
//		_ = buf
//	})
//
// [Go] and [Run] lock a fresh goroutine to its thread and, when the function
// returns, free every value created on that thread. The thread is left
// locked, so the runtime terminates it together with the goroutine.
//
// Values created on any other thread are only dropped by [Local.Delete].
// The kernel may hand a terminated thread's id to a new thread, which then
// sees the old value.
package threadlocal
