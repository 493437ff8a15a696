// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package halgpu

import (
	// Register the Vulkan HAL backend for hal.GetBackend.
	_ "github.com/gogpu/wgpu/hal/vulkan"
)
