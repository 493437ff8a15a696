// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build glfw

package glfwgl

import (
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Available reports whether the package was built with glfw support.
const Available = true

type glfwSystem struct{}

func defaultSystem() windowSystem { return glfwSystem{} }

func (glfwSystem) Init() error { return glfw.Init() }

func (glfwSystem) Terminate() { glfw.Terminate() }

func (glfwSystem) CreateWindow(pf pixelFormat, width, height int) (window, error) {
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ClientAPI, glfw.OpenGLAPI)
	glfw.WindowHint(glfw.RedBits, 8)
	glfw.WindowHint(glfw.GreenBits, 8)
	glfw.WindowHint(glfw.BlueBits, 8)
	alphaBits := 0
	if pf.alpha {
		alphaBits = 8
	}
	glfw.WindowHint(glfw.AlphaBits, alphaBits)
	glfw.WindowHint(glfw.Samples, pf.samples)

	w, err := glfw.CreateWindow(width, height, "gg-harness", nil, nil)
	if err != nil {
		return nil, err
	}
	return glfwWindow{w}, nil
}

func (glfwSystem) Current() window {
	w := glfw.GetCurrentContext()
	if w == nil {
		return nil
	}
	return glfwWindow{w}
}

func (glfwSystem) Detach() { glfw.DetachCurrentContext() }

func (glfwSystem) LoadGL() (*glFuncs, error) {
	return bindGL(func(name string) unsafe.Pointer { return glfw.GetProcAddress(name) })
}

// glfwWindow compares equal for the same *glfw.Window.
type glfwWindow struct {
	*glfw.Window
}

func (w glfwWindow) Raw() any { return w.Window }
