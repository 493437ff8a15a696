// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package device implements the lifecycle of a GPU rendering context shared
// by the surfaces of one backend target.
//
// A [Device] wraps a reference-counted native context [Handle] and a
// [Platform] that knows how to make contexts current, present and resolve
// entry points. Drawing code brackets GPU work with Acquire and Release:
//
//	if err := dev.Acquire(); err != nil {
//		return err
//	}
//	defer dev.Release()
//	if err := dev.MakeCurrent(surface); err != nil {
//		return err
//	}
//
// Acquire is re-entrant on the calling thread and Release restores the
// context that was current before the outermost Acquire. Thread-aware
// devices serialize access with a lock held from the outermost Acquire to
// the matching Release. The lock belongs to the thread that took it: other
// threads wait for it in Acquire and MakeCurrent, and their Release calls
// are ignored. Contexts are bound to OS threads, so callers must
// run on a locked thread (see package threadlocal).
package device
