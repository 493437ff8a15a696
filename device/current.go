// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package device

import "github.com/gogpu/gg-harness/threadlocal"

// ThreadCurrent records a current context per OS thread.
//
// Platforms without a native notion of a current context (software
// rasterizers, explicit-queue GPU APIs) use it to give Devices the same
// thread-bound semantics a GL driver provides.
type ThreadCurrent struct {
	local threadlocal.Local[*currentSlot]
}

type currentSlot struct {
	ctx Context
}

// NewThreadCurrent returns an empty ThreadCurrent.
func NewThreadCurrent() *ThreadCurrent {
	t := &ThreadCurrent{}
	t.local.New = func() *currentSlot { return &currentSlot{} }
	return t
}

// Get returns the context current on the calling thread.
func (t *ThreadCurrent) Get() Context {
	return t.local.Get().ctx
}

// Set makes ctx current on the calling thread. A nil ctx clears it.
func (t *ThreadCurrent) Set(ctx Context) {
	t.local.Get().ctx = ctx
}
