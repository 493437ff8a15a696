// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !linux && !windows

package threadlocal

import (
	"bytes"
	"runtime"
	"strconv"
)

// ThreadID returns an id for the calling thread.
//
// There is no portable thread id here, so the goroutine id stands in for it.
// Under runtime.LockOSThread (Go, Run) goroutines and threads map one to one.
func ThreadID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	s := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	if i := bytes.IndexByte(s, ' '); i > 0 {
		s = s[:i]
	}
	id, _ := strconv.ParseInt(string(s), 10, 64)
	return id
}
