// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package glfwgl is the windowing backend: each device owns a hidden glfw
// window with an OpenGL context, and surfaces render into its default
// framebuffer.
//
// GL entry points are resolved with glfw.GetProcAddress and called through
// purego, so no GL bindings are compiled in. The glfw code is only built
// with the "glfw" build tag; without it the backend reports itself as
// unavailable and CreateSurface returns (nil, nil).
//
// Devices of this family are not thread-aware. glfw requires window
// creation on the main thread on some platforms; callers that need that
// must run the adapter from the main goroutine with runtime.LockOSThread
// in init.
package glfwgl
