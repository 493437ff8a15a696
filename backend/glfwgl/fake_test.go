// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glfwgl

import (
	"errors"
	"math"
	"unsafe"
)

// fakeSystem is an in-memory window system with a software GL.
type fakeSystem struct {
	initErr    error
	loadErr    error
	dropFinish bool
	// clamp limits window sizes like a window manager would.
	clamp int

	current  *fakeWindow
	windows  []*fakeWindow
	inits       int
	terms       int
	finishes    int
	viewports   int
	clearColors int
}

type fakeWindow struct {
	sys       *fakeSystem
	pf        pixelFormat
	w, h      int
	fb        []byte
	clear     [4]byte
	destroyed bool
	swaps     int
}

func (f *fakeSystem) Init() error {
	if f.initErr != nil {
		return f.initErr
	}
	f.inits++
	return nil
}

func (f *fakeSystem) Terminate() { f.terms++ }

func (f *fakeSystem) CreateWindow(pf pixelFormat, width, height int) (window, error) {
	if f.clamp > 0 {
		width, height = min(width, f.clamp), min(height, f.clamp)
	}
	w := &fakeWindow{sys: f, pf: pf, w: width, h: height, fb: make([]byte, width*height*4)}
	f.windows = append(f.windows, w)
	return w, nil
}

func (f *fakeSystem) Current() window {
	if f.current == nil {
		return nil
	}
	return f.current
}

func (f *fakeSystem) Detach() { f.current = nil }

func (f *fakeSystem) LoadGL() (*glFuncs, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.current == nil {
		return nil, errors.New("fake: no current context")
	}
	gl := &glFuncs{
		Viewport:    func(x, y, width, height int32) { f.viewports++ },
		PixelStorei: func(pname uint32, param int32) {},
		ClearColor: func(r, g, b, a float32) {
			f.clearColors++
			f.current.clear = [4]byte{unit(r), unit(g), unit(b), unit(a)}
		},
		Clear: func(mask uint32) {
			if mask&glColorBufferBit == 0 {
				return
			}
			w := f.current
			for i := 0; i < len(w.fb); i += 4 {
				copy(w.fb[i:i+4], w.clear[:])
			}
		},
		ReadPixels: func(x, y, width, height int32, format, xtype uint32, pixels unsafe.Pointer) {
			dst := unsafe.Slice((*byte)(pixels), int(width)*int(height)*4)
			copy(dst, f.current.fb)
		},
		Flush:  func() {},
		Finish: func() { f.finishes++ },
	}
	if f.dropFinish {
		gl.Finish = nil
	}
	return gl, nil
}

func unit(v float32) byte {
	return byte(math.Round(float64(v) * 255))
}

func (w *fakeWindow) MakeContextCurrent() {
	if w.destroyed {
		panic("fake: make current on destroyed window")
	}
	w.sys.current = w
}

func (w *fakeWindow) SwapBuffers() { w.swaps++ }

func (w *fakeWindow) Destroy() {
	w.destroyed = true
	if w.sys.current == w {
		w.sys.current = nil
	}
}

func (w *fakeWindow) GetFramebufferSize() (int, int) { return w.w, w.h }

func (w *fakeWindow) Raw() any { return w }
