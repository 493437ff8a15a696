// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package halgpu provides the native GPU targets, built on the gogpu/wgpu
// hardware abstraction layer.
//
// Each closure owns one HAL logical device, wrapped in a device.Device of
// family "hal". Surfaces are offscreen BGRA8 render textures, optionally
// multisampled. Clear records a render pass and submits it without
// waiting; the "finish" entry point waits for every outstanding submission,
// and Image reads the texture back through a staging buffer.
//
// The Vulkan backend is registered unless the nogpu build tag is set.
// Tests use hal/noop through Options.API.
package halgpu
