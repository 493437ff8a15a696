// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build linux

package threadlocal

import "golang.org/x/sys/unix"

// ThreadID returns the kernel id of the calling OS thread.
func ThreadID() int64 { return int64(unix.Gettid()) }
