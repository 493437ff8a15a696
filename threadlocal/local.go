// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package threadlocal

import (
	"sync"
	"sync/atomic"
)

// Local holds one lazily constructed value per OS thread.
//
// The zero Local is ready to use once New is set. New and Free must not be
// changed after the first Get.
//
// Only threads started by Go or Run free their values on exit. A thread
// locked some other way must call Delete before it exits; otherwise its
// value leaks and a later thread given the same kernel id inherits it.
type Local[T any] struct {
	// New constructs the value for the calling thread.
	// It is called at most once per thread.
	New func() T

	// Free, if non-nil, receives a thread's value when the value is dropped,
	// either through Delete or when a thread started by Go or Run exits.
	Free func(T)

	cells atomic.Pointer[sync.Map] // thread id -> *cell[T]
}

type cell[T any] struct {
	once sync.Once
	val  T
}

func (l *Local[T]) store() *sync.Map {
	if m := l.cells.Load(); m != nil {
		return m
	}
	l.cells.CompareAndSwap(nil, new(sync.Map))
	return l.cells.Load()
}

// Get returns the calling thread's value, constructing it on first use.
func (l *Local[T]) Get() T {
	id := ThreadID()
	m := l.store()

	v, ok := m.Load(id)
	if !ok {
		v, _ = m.LoadOrStore(id, &cell[T]{})
	}
	c := v.(*cell[T])
	c.once.Do(func() {
		c.val = l.New()
		onExit(id, func() { l.drop(id) })
	})
	return c.val
}

// Delete drops the calling thread's value. The next Get constructs a new one.
func (l *Local[T]) Delete() {
	l.drop(ThreadID())
}

// Len returns the number of threads currently holding a value.
func (l *Local[T]) Len() int {
	m := l.cells.Load()
	if m == nil {
		return 0
	}
	n := 0
	m.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

func (l *Local[T]) drop(id int64) {
	m := l.cells.Load()
	if m == nil {
		return
	}
	v, ok := m.LoadAndDelete(id)
	if !ok {
		return
	}
	c := v.(*cell[T])
	if l.Free != nil {
		l.Free(c.val)
	}
}
