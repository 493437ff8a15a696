// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package device

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gg-harness/threadlocal"
)

// State is the lifecycle state of a Device.
type State int32

const (
	// StateUnbound means the device context is not current anywhere.
	StateUnbound State = iota
	// StateCurrent means a thread has acquired the device.
	StateCurrent
	// StateDestroyed means the native context has been released.
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUnbound:
		return "unbound"
	case StateCurrent:
		return "current"
	case StateDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Config describes a Device to create.
type Config struct {
	// Family names the backend family, for example "gl" or "hal".
	Family string

	// Platform performs context switches and entry point lookups.
	Platform Platform

	// Handle is the device's own context. New takes ownership of the
	// caller's reference, including on failure.
	Handle *Handle

	// ThreadAware devices take a lock from the outermost Acquire to the
	// matching Release. Devices used from a single thread may leave it
	// unset, which disables locking and makes Release a no-op.
	ThreadAware bool

	// Required lists entry points that must resolve. ProcFlush and
	// ProcFinish are always required.
	Required []string

	// Reset, if set, runs before switching away from a foreign context so
	// the backend can drop GPU state it cached for its own context.
	Reset func()

	// Native is backend-specific data, see Native.
	Native any
}

// Device is a shared GPU rendering context.
//
// A Device is created with one reference. Reference adds more and Destroy
// drops one; the last Destroy finishes outstanding work and releases the
// native context.
type Device struct {
	family      string
	platform    Platform
	handle      *Handle
	threadAware bool
	dispatch    map[string]Proc
	reset       func()
	native      any
	status      error

	refs        atomic.Int32
	finished    atomic.Bool
	destroyOnce sync.Once

	// mu is the device lock; it has the lifetime of the handle.
	mu sync.Mutex

	// st guards the fields below. It is never held while waiting for mu.
	st     sync.Mutex
	state  State
	active Context
	prev   Context
	depth  int
	held   bool
	owner  int64 // thread holding mu, valid while held
}

// New creates a Device and resolves its dispatch table.
//
// On failure New releases cfg.Handle and returns an error Device (see
// InError) together with the error, so callers can hand out the Device
// either way.
func New(cfg Config) (*Device, error) {
	if cfg.Platform == nil || cfg.Handle == nil {
		if cfg.Handle != nil {
			cfg.Handle.Release()
		}
		return InError(ErrInvalidConfig), ErrInvalidConfig
	}

	names := append([]string{ProcFlush, ProcFinish}, cfg.Required...)
	dispatch := make(map[string]Proc, len(names))
	for _, name := range names {
		if _, ok := dispatch[name]; ok {
			continue
		}
		p, ok := cfg.Platform.Lookup(name)
		if !ok || p == nil {
			cfg.Handle.Release()
			err := &DispatchError{Family: cfg.Family, Name: name}
			slogger().Warn("device: dispatch initialization failed", "family", cfg.Family, "proc", name)
			return InError(err), err
		}
		dispatch[name] = p
	}

	d := &Device{
		family:      cfg.Family,
		platform:    cfg.Platform,
		handle:      cfg.Handle,
		threadAware: cfg.ThreadAware,
		dispatch:    dispatch,
		reset:       cfg.Reset,
		native:      cfg.Native,
		active:      cfg.Handle.Context(),
	}
	d.refs.Store(1)
	slogger().Debug("device: created", "family", cfg.Family, "thread_aware", cfg.ThreadAware)
	return d, nil
}

// InError returns a Device whose every operation fails with err.
// Destroy on it is safe and does nothing.
func InError(err error) *Device {
	d := &Device{status: err, state: StateDestroyed}
	d.refs.Store(1)
	return d
}

// Family returns the backend family name.
func (d *Device) Family() string { return d.family }

// Handle returns the device's own native context handle.
func (d *Device) Handle() *Handle { return d.handle }

// Status returns the error that put the device in error state, ErrFinished
// after Finish, or nil.
func (d *Device) Status() error {
	if d.status != nil {
		return d.status
	}
	if d.finished.Load() {
		return ErrFinished
	}
	return nil
}

// State returns the lifecycle state.
func (d *Device) State() State {
	d.st.Lock()
	defer d.st.Unlock()
	return d.state
}

// ThreadAware reports whether the device serializes access with a lock.
func (d *Device) ThreadAware() bool { return d.threadAware }

// Proc returns a resolved entry point.
func (d *Device) Proc(name string) (Proc, bool) {
	p, ok := d.dispatch[name]
	return p, ok
}

// Acquire makes the device context current on the calling thread.
//
// If the device context is already current here, Acquire only increments a
// nesting depth. Otherwise it runs the reset hook, takes the device lock
// (thread-aware devices only), remembers the previously current context and
// switches.
func (d *Device) Acquire() error {
	if err := d.Status(); err != nil {
		return err
	}
	return d.acquire()
}

func (d *Device) acquire() error {
	me := threadlocal.ThreadID()
	cur := d.platform.Current()

	d.st.Lock()
	if d.state == StateDestroyed {
		d.st.Unlock()
		return ErrFinished
	}
	mine := d.held && d.owner == me
	if cur != nil && cur == d.active && (!d.threadAware || mine) {
		if d.depth == 0 {
			d.prev = cur
		}
		d.depth++
		d.state = StateCurrent
		d.st.Unlock()
		return nil
	}
	foreign := cur != nil && cur != d.active
	d.st.Unlock()

	if foreign && d.reset != nil {
		d.reset()
	}
	// The owner re-enters without the lock, anyone else waits for it.
	needLock := d.threadAware && !mine
	if needLock {
		d.mu.Lock()
	}

	d.st.Lock()
	defer d.st.Unlock()
	if d.state == StateDestroyed {
		if needLock {
			d.mu.Unlock()
		}
		return ErrFinished
	}
	if err := d.platform.MakeCurrent(d.active); err != nil {
		if needLock {
			d.mu.Unlock()
		}
		return fmt.Errorf("device: make current: %w", err)
	}
	if mine {
		d.depth++
	} else {
		d.prev = cur
		d.held = d.threadAware
		d.owner = me
		d.depth = 1
	}
	d.state = StateCurrent
	return nil
}

// Release ends an Acquire. The outermost Release restores the context that
// was current before the matching Acquire and unlocks the device.
//
// Release is a no-op for devices that are not thread-aware. An unbalanced
// Release, or one from a thread that does not hold the device, is ignored.
func (d *Device) Release() {
	if !d.threadAware {
		return
	}
	me := threadlocal.ThreadID()

	d.st.Lock()
	defer d.st.Unlock()
	if d.depth == 0 || !d.held || d.owner != me {
		slogger().Debug("device: release ignored, device not held by this thread", "family", d.family)
		return
	}
	d.depth--
	if d.depth > 0 {
		return
	}

	if err := d.platform.MakeCurrent(d.prev); err != nil {
		slogger().Warn("device: restore previous context", "family", d.family, "err", err)
	}
	d.prev = nil
	if d.state == StateCurrent {
		d.state = StateUnbound
	}
	if d.held {
		d.held = false
		d.owner = 0
		d.mu.Unlock()
	}
}

// MakeCurrent switches the device to the context b renders into. It does
// nothing if that context is already the active one.
//
// If the calling thread has not acquired the device, MakeCurrent acquires
// it and the caller must call Release.
func (d *Device) MakeCurrent(b Bindable) error {
	if err := d.Status(); err != nil {
		return err
	}
	target := b.BoundContext()
	me := threadlocal.ThreadID()

	d.st.Lock()
	if d.state == StateDestroyed {
		d.st.Unlock()
		return ErrFinished
	}
	mine := !d.threadAware || (d.held && d.owner == me)
	if mine && target == d.active && d.depth > 0 {
		d.st.Unlock()
		return nil
	}
	needLock := !mine
	d.st.Unlock()

	var cur Context
	if needLock {
		cur = d.platform.Current()
		d.mu.Lock()
	}

	d.st.Lock()
	defer d.st.Unlock()
	if d.state == StateDestroyed {
		if needLock {
			d.mu.Unlock()
		}
		return ErrFinished
	}
	if err := d.platform.MakeCurrent(target); err != nil {
		if needLock {
			d.mu.Unlock()
		}
		return fmt.Errorf("device: make current: %w", err)
	}
	if needLock {
		d.held = true
		d.owner = me
		d.prev = cur
		d.depth = 1
	} else if d.depth == 0 {
		d.depth = 1
	}
	d.active = target
	d.state = StateCurrent
	return nil
}

// Forget stops the device from driving the context of b, falling back to
// the device's own context. Surfaces call it when they close.
func (d *Device) Forget(b Bindable) {
	if d.handle == nil {
		return
	}
	target := b.BoundContext()
	d.st.Lock()
	defer d.st.Unlock()
	if d.active == target {
		d.active = d.handle.Context()
	}
	if d.prev == target {
		d.prev = nil
	}
}

// SwapBuffers presents b when it renders into the device's active context.
// Surfaces bound elsewhere are skipped silently.
func (d *Device) SwapBuffers(b Bindable) error {
	if err := d.Status(); err != nil {
		return err
	}
	target := b.BoundContext()

	d.st.Lock()
	active := d.active
	d.st.Unlock()
	if target == nil || target != active {
		slogger().Debug("device: swap skipped, surface not bound to device context", "family", d.family)
		return nil
	}
	return d.platform.SwapBuffers(target)
}

// Sync waits for all submitted GPU work to complete.
// It returns without touching the GPU if the device cannot be acquired.
func (d *Device) Sync() error {
	if err := d.Acquire(); err != nil {
		return err
	}
	defer d.Release()
	return d.dispatch[ProcFinish]()
}

// Flush submits pending GPU work without waiting.
func (d *Device) Flush() error {
	if err := d.Acquire(); err != nil {
		return err
	}
	defer d.Release()
	return d.dispatch[ProcFlush]()
}

// Reference adds a reference to d and returns it.
func (d *Device) Reference() *Device {
	d.refs.Add(1)
	return d
}

// Refs returns the current reference count.
func (d *Device) Refs() int32 { return d.refs.Load() }

// Finish waits for outstanding GPU work and marks the device finished.
// Later operations fail with ErrFinished. Finish is idempotent.
func (d *Device) Finish() {
	if d.status != nil || d.finished.Swap(true) {
		return
	}
	if err := d.acquire(); err != nil {
		return
	}
	if err := d.dispatch[ProcFinish](); err != nil {
		slogger().Warn("device: finish", "family", d.family, "err", err)
	}
	d.Release()
}

// Destroy drops a reference. The last reference finishes the device, makes
// its context non-current, releases the native handle and the lock.
func (d *Device) Destroy() {
	if d == nil {
		return
	}
	n := d.refs.Add(-1)
	if n > 0 {
		return
	}
	if n < 0 {
		slogger().Warn("device: destroyed more often than referenced", "family", d.family)
		return
	}
	if d.status != nil {
		return
	}
	d.destroyOnce.Do(func() {
		d.Finish()
		d.destroy()
	})
}

func (d *Device) destroy() {
	d.st.Lock()
	own := d.handle.Context()
	cur := d.platform.Current()
	if cur != nil && (cur == d.active || cur == own) {
		// Hand the thread back to a foreign context if one was displaced.
		restore := d.prev
		if restore == d.active || restore == own {
			restore = nil
		}
		if err := d.platform.MakeCurrent(restore); err != nil {
			slogger().Warn("device: restore previous context", "family", d.family, "err", err)
			if restore != nil {
				if err := d.platform.MakeCurrent(nil); err != nil {
					slogger().Warn("device: unset current context", "family", d.family, "err", err)
				}
			}
		}
	}
	held := d.held
	d.held = false
	d.owner = 0
	d.depth = 0
	d.prev = nil
	d.active = nil
	d.state = StateDestroyed
	d.st.Unlock()

	d.handle.Release()
	if held {
		d.mu.Unlock()
	}
	slogger().Debug("device: destroyed", "family", d.family)
}

// Native returns the backend-specific data of d as T.
//
// It fails with a *TypeMismatchError if d does not belong to family, or
// with the device status if d is in error.
func Native[T any](d *Device, family string) (T, error) {
	var zero T
	if d.status != nil {
		return zero, d.status
	}
	if d.family != family {
		return zero, &TypeMismatchError{Want: family, Got: d.family}
	}
	v, ok := d.native.(T)
	if !ok {
		return zero, &TypeMismatchError{Want: fmt.Sprintf("%s (%T)", family, zero), Got: fmt.Sprintf("%s (%T)", d.family, d.native)}
	}
	return v, nil
}
