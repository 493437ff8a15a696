// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package device

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleFreesOnce(t *testing.T) {
	var freed []Context
	ctx := &fakeCtx{name: "gl"}
	h := NewHandle(ctx, func(c Context) { freed = append(freed, c) })

	h.Retain()
	assert.Equal(t, int32(2), h.Refs())

	h.Release()
	assert.Empty(t, freed)
	assert.False(t, h.Released())

	h.Release()
	assert.Equal(t, []Context{ctx}, freed)
	assert.True(t, h.Released())

	h.Release()
	assert.Len(t, freed, 1, "over-release must not free twice")
	assert.Equal(t, int32(0), h.Refs())
}

func TestHandleOnFreeOrder(t *testing.T) {
	var order []string
	h := NewHandle(nil, func(Context) { order = append(order, "context") })
	h.OnFree(func() { order = append(order, "first") })
	h.OnFree(func() { order = append(order, "second") })

	h.Release()
	assert.Equal(t, []string{"context", "second", "first"}, order)
}

func TestHandleConcurrentRelease(t *testing.T) {
	const n = 64
	var (
		mu    sync.Mutex
		freed int
	)
	h := NewHandle(&fakeCtx{}, func(Context) {
		mu.Lock()
		freed++
		mu.Unlock()
	})
	for range n - 1 {
		h.Retain()
	}

	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Release()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, freed)
}

func TestHandleRetainAfterFreePanics(t *testing.T) {
	h := NewHandle(nil, nil)
	h.Release()
	assert.Panics(t, func() { h.Retain() })
}
