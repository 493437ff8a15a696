// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package software provides the pure-software rasterizer targets.
//
// Surfaces are *image.RGBA buffers. Raster work is queued on a worker pool
// owned by the device context, so drawing is asynchronous just like on a
// GPU: the "flush" entry point is a no-op and "finish" waits for every
// queued job. The context is emulated per OS thread with
// device.ThreadCurrent and the device is thread-aware.
package software
