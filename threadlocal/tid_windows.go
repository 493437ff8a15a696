// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build windows

package threadlocal

import "golang.org/x/sys/windows"

// ThreadID returns the id of the calling OS thread.
func ThreadID() int64 { return int64(windows.GetCurrentThreadId()) }
