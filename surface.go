package harness

import (
	"image"
	"image/color"
	"sync"

	"github.com/gogpu/gg-harness/device"
)

// Surface is a pixel target bound to one Device.
//
// A surface holds a reference on its Device and must be closed before, or
// together with, the closure that created it.
type Surface interface {
	device.Bindable

	Width() int
	Height() int
	Content() Content

	// Status reports an error the surface entered at creation, or nil.
	Status() error

	// Device returns the device the surface renders through.
	Device() *device.Device

	// Clear fills the whole surface with c.
	Clear(c color.Color) error

	// Image reads the surface back into CPU memory.
	Image() (*image.RGBA, error)

	// Close releases the surface and its device reference. Close is
	// idempotent.
	Close() error
}

// Closure is the per-run bundle returned by CreateSurface together with
// its Surface. It is freed by the target's Cleanup.
type Closure interface {
	Device() *device.Device
	Surface() Surface

	// Teardown releases everything the closure owns. It is idempotent.
	Teardown()
}

// Bundle is the common part of adapter closures: one device, one surface
// and the adapter resources freed after them.
type Bundle struct {
	dev  *device.Device
	surf Surface
	free []func()

	once sync.Once
	done bool
}

// NewBundle returns a Bundle owning a reference on d and the surface s.
// Either may be nil for partially built closures.
func NewBundle(d *device.Device, s Surface) *Bundle {
	return &Bundle{dev: d, surf: s}
}

// Device returns the closure device.
func (b *Bundle) Device() *device.Device { return b.dev }

// Surface returns the closure surface.
func (b *Bundle) Surface() Surface { return b.surf }

// SetSurface records the surface once it has been created.
func (b *Bundle) SetSurface(s Surface) { b.surf = s }

// OnTeardown registers fn to run after the device has been destroyed.
// Functions run in reverse registration order.
func (b *Bundle) OnTeardown(fn func()) {
	b.free = append(b.free, fn)
}

// Done reports whether Teardown has run.
func (b *Bundle) Done() bool { return b.done }

// Teardown closes the surface, finishes and destroys the device (which
// releases the native handle and the device lock), then frees the
// remaining adapter resources. Only the first call has an effect.
func (b *Bundle) Teardown() {
	b.once.Do(func() {
		Teardown(b.surf, b.dev)
		for i := len(b.free) - 1; i >= 0; i-- {
			b.free[i]()
		}
		b.free = nil
		b.done = true
	})
}

// Teardown closes s and drops one reference on d, in that order.
// Either may be nil.
//
// The device is held across the whole sequence, so the surface close and
// the final finish run without context switches and the destroy step
// unbinds the context once. If d survives (other references remain) it is
// released again.
func Teardown(s Surface, d *device.Device) {
	held := d != nil && d.Acquire() == nil
	if s != nil {
		if err := s.Close(); err != nil {
			Logger().Warn("harness: close surface", "err", err)
		}
	}
	if d == nil {
		return
	}
	d.Destroy()
	if held && d.State() != device.StateDestroyed {
		d.Release()
	}
}
