// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package device

import (
	"errors"
	"fmt"
)

var (
	// ErrFinished is returned by operations on a finished or destroyed Device.
	ErrFinished = errors.New("device: finished")

	// ErrDispatchInit is wrapped by DispatchError.
	ErrDispatchInit = errors.New("device: dispatch initialization failed")

	// ErrInvalidConfig is returned by New when Platform or Handle is missing.
	ErrInvalidConfig = errors.New("device: invalid config")

	// ErrTypeMismatch is wrapped by TypeMismatchError.
	ErrTypeMismatch = errors.New("device: type mismatch")
)

// DispatchError reports a required entry point the platform failed to resolve.
type DispatchError struct {
	Family string
	Name   string
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("device: dispatch initialization failed: %s: unresolved entry point %q", e.Family, e.Name)
}

func (e *DispatchError) Unwrap() error { return ErrDispatchInit }

// TypeMismatchError is returned when backend-specific data is requested
// from a Device of another family.
type TypeMismatchError struct {
	Want string
	Got  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("device: type mismatch: want %s device, got %s", e.Want, e.Got)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }
