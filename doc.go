// Package harness runs backend-agnostic 2D rendering tests against
// interchangeable rendering backends.
//
// # Overview
//
// A test author writes drawing code once; the harness runs it against each
// registered [Target]: a pure software rasterizer, a native GPU context
// (gogpu/wgpu HAL) and a windowed GL context. Every target produces a
// [Surface] whose pixels can be compared or written to a file.
//
// # Quick Start
//
//	reg := targets.Registry()
//	t, ok := reg.Lookup("native-gpu")
//	if !ok {
//		return // unknown target: skip
//	}
//	s, c := t.CreateSurface(harness.SurfaceRequest{
//		Name:    "clear",
//		Content: harness.ContentColorAlpha,
//		Width:   64,
//		Height:  64,
//	})
//	if s == nil {
//		return // backend unavailable: skip
//	}
//	defer t.Release(c)
//	_ = s.Clear(color.White)
//	_ = t.Sync(c)
//	img, err := t.Image(s)
//
// # Architecture
//
// The module is organized into:
//   - harness: Target descriptors, the Registry, the Surface contract
//   - device: native context handles and the Device state machine
//   - threadlocal: per-OS-thread values
//   - backend/software, backend/halgpu, backend/glfwgl: backend adapters
//   - targets: the ordered table of every built-in target
//   - config: TOML and environment settings for the table and the runner
//   - runner: the driver loop that aggregates per-target results
//
// # Threads
//
// Rendering contexts are bound to OS threads. Run every call that touches a
// Surface or Device on a goroutine locked with runtime.LockOSThread, or use
// threadlocal.Go and threadlocal.Run.
package harness

// Version is the current version of the harness.
const Version = "0.1.0"
