// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glfwgl

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/gogpu/gg-harness/device"
)

// GL enums used by surfaces.
const (
	glColorBufferBit = 0x00004000
	glPackAlignment  = 0x0D05
	glRGBA           = 0x1908
	glUnsignedByte   = 0x1401
)

// ErrMissingEntryPoints is returned when the driver lacks a GL function.
// The error also wraps a *device.DispatchError naming the first one.
var ErrMissingEntryPoints = errors.New("glfwgl: missing GL entry points")

// glFuncs holds the GL 1.1 functions surfaces need.
type glFuncs struct {
	Viewport    func(x, y, width, height int32)
	ClearColor  func(r, g, b, a float32)
	Clear       func(mask uint32)
	PixelStorei func(pname uint32, param int32)
	ReadPixels  func(x, y, width, height int32, format, xtype uint32, pixels unsafe.Pointer)
	Flush       func()
	Finish      func()
}

// bindGL resolves every function with resolve and binds it with purego.
// Nothing is registered unless all symbols resolve.
func bindGL(resolve func(name string) unsafe.Pointer) (*glFuncs, error) {
	gl := &glFuncs{}
	entries := []struct {
		name string
		fptr any
	}{
		{"glViewport", &gl.Viewport},
		{"glClearColor", &gl.ClearColor},
		{"glClear", &gl.Clear},
		{"glPixelStorei", &gl.PixelStorei},
		{"glReadPixels", &gl.ReadPixels},
		{"glFlush", &gl.Flush},
		{"glFinish", &gl.Finish},
	}

	addrs := make([]uintptr, len(entries))
	var missing []string
	for i, e := range entries {
		addrs[i] = uintptr(resolve(e.name))
		if addrs[i] == 0 {
			missing = append(missing, e.name)
		}
	}
	if len(missing) > 0 {
		de := &device.DispatchError{Family: Family, Name: missing[0]}
		return nil, fmt.Errorf("%w: %s: %w", ErrMissingEntryPoints, strings.Join(missing, ", "), de)
	}

	for i, e := range entries {
		purego.RegisterFunc(e.fptr, addrs[i])
	}
	return gl, nil
}
