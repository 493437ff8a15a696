// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package targets declares the harness target table.
//
// Targets are listed in backend priority order: native GPU, window,
// software. Each backend contributes an RGBA and an opaque RGB target.
package targets

import (
	"sync"

	harness "github.com/gogpu/gg-harness"
	"github.com/gogpu/gg-harness/backend/glfwgl"
	"github.com/gogpu/gg-harness/backend/halgpu"
	"github.com/gogpu/gg-harness/backend/software"
	"github.com/gogpu/gg-harness/config"
)

// Target names.
const (
	NativeGPU    = "native-gpu"
	NativeGPURGB = "native-gpu-rgb"
	Window       = "window"
	WindowRGB    = "window-rgb"
	Software     = "software"
	SoftwareRGB  = "software-rgb"
)

// New builds the target table with adapters configured from cfg.
func New(cfg config.Config) *harness.Registry {
	gpu := halgpu.New(halgpu.Options{
		Backend:         cfg.GPU.Backend,
		RequireHardware: cfg.GPU.RequireHardware,
		Samples:         cfg.GPU.Samples,
	})
	win := glfwgl.New(glfwgl.Options{Samples: cfg.Window.Samples})
	sw := software.New(cfg.Software.Workers)

	return harness.NewRegistry(
		gpu.Target(NativeGPU, harness.ContentColorAlpha),
		gpu.Target(NativeGPURGB, harness.ContentColor),
		win.Target(Window, harness.ContentColorAlpha),
		win.Target(WindowRGB, harness.ContentColor),
		sw.Target(Software, harness.ContentColorAlpha),
		sw.Target(SoftwareRGB, harness.ContentColor),
	)
}

var defaultRegistry = sync.OnceValue(func() *harness.Registry {
	return New(config.Default())
})

// Registry returns the process-wide table built from the default
// configuration.
func Registry() *harness.Registry { return defaultRegistry() }

// Lookup finds a target in the process-wide table by exact name.
func Lookup(name string) (harness.Target, bool) { return Registry().Lookup(name) }

// List returns the process-wide table in priority order.
func List() []harness.Target { return Registry().List() }
