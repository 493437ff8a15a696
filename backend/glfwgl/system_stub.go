// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !glfw

package glfwgl

import "errors"

// Available reports whether the package was built with glfw support.
const Available = false

var errNotBuilt = errors.New("glfwgl: built without the glfw tag")

type stubSystem struct{}

func defaultSystem() windowSystem { return stubSystem{} }

func (stubSystem) Init() error { return errNotBuilt }

func (stubSystem) Terminate() {}

func (stubSystem) CreateWindow(pixelFormat, int, int) (window, error) { return nil, errNotBuilt }

func (stubSystem) Current() window { return nil }

func (stubSystem) Detach() {}

func (stubSystem) LoadGL() (*glFuncs, error) { return nil, errNotBuilt }
