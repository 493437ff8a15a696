package harness

import "errors"

var (
	// ErrUnsupported is returned for optional operations a target lacks.
	ErrUnsupported = errors.New("harness: unsupported")

	// ErrSurfaceClosed is returned by operations on a closed surface.
	ErrSurfaceClosed = errors.New("harness: surface closed")

	// ErrForeignSurface is returned when a surface is handed to a target
	// of another backend family.
	ErrForeignSurface = errors.New("harness: surface belongs to another backend")
)
