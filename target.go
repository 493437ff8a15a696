package harness

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// Content describes which channels a surface stores.
type Content int

const (
	// ContentColor surfaces are opaque RGB.
	ContentColor Content = iota + 1
	// ContentColorAlpha surfaces carry an alpha channel.
	ContentColorAlpha
)

func (c Content) String() string {
	switch c {
	case ContentColor:
		return "color"
	case ContentColorAlpha:
		return "color-alpha"
	default:
		return fmt.Sprintf("Content(%d)", int(c))
	}
}

// HasAlpha reports whether c stores an alpha channel.
func (c Content) HasAlpha() bool { return c == ContentColorAlpha }

// SurfaceKind tags the family of surfaces a target produces.
type SurfaceKind int

const (
	// KindImage surfaces live in CPU memory.
	KindImage SurfaceKind = iota + 1
	// KindGPU surfaces are offscreen GPU textures.
	KindGPU
	// KindWindow surfaces are the back buffer of a window.
	KindWindow
)

func (k SurfaceKind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindGPU:
		return "gpu"
	case KindWindow:
		return "window"
	default:
		return fmt.Sprintf("SurfaceKind(%d)", int(k))
	}
}

// Mode selects between correctness and performance runs.
type Mode int

const (
	// ModeTest favors output quality (multisampling on where available).
	ModeTest Mode = iota
	// ModePerf favors throughput.
	ModePerf
)

// SurfaceRequest describes the surface a test wants.
type SurfaceRequest struct {
	// Name identifies the test, used for labels and logs.
	Name    string
	Content Content

	// Width and Height may be fractional or below one; see PixelSize.
	Width  float64
	Height float64

	// MaxWidth and MaxHeight are sizing hints for backends that allocate a
	// shared drawable. They are not enforced.
	MaxWidth  float64
	MaxHeight float64

	Mode Mode
}

// Size returns the integer pixel size of the request.
func (r SurfaceRequest) Size() (width, height int) {
	return PixelSize(r.Width), PixelSize(r.Height)
}

// PixelSize converts a requested dimension to pixels: clamped to at least
// one, then rounded up.
func PixelSize(v float64) int {
	if math.IsNaN(v) || v < 1 {
		return 1
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Ceil(v))
}

// Caps are the capability flags of a target.
type Caps struct {
	// Vector is set for surfaces that record vector output.
	Vector bool
	// SimilarSurfaces is set when CreateSimilar is supported.
	SimilarSurfaces bool
	// Measurable is set when timing-based tests are meaningful.
	Measurable bool
}

// Function references stored in a Target.
type (
	// CreateSurfaceFunc builds a surface for req. It returns (nil, nil)
	// when the backend is unavailable. A surface with a non-nil Status is
	// returned after its closure has already been cleaned up.
	CreateSurfaceFunc func(req SurfaceRequest) (Surface, Closure)

	// CreateSimilarFunc creates a surface sharing the device of s.
	CreateSimilarFunc func(s Surface, content Content, width, height int) (Surface, error)

	// GetImageFunc extracts a portable pixel snapshot.
	GetImageFunc func(s Surface) (*image.RGBA, error)

	// WriteToFileFunc serializes s to path.
	WriteToFileFunc func(s Surface, path string) error

	// CleanupFunc frees a closure. It must be safe to call more than once.
	CleanupFunc func(c Closure)

	// SynchronizeFunc waits for all GPU work of c to complete.
	SynchronizeFunc func(c Closure) error
)

// Target describes one backend configuration. Targets are declared once
// and never modified.
type Target struct {
	Name    string
	Family  string
	Kind    SurfaceKind
	Content Content

	// MinIDPrecision is the precision hint for ID-based hit testing.
	MinIDPrecision int

	CreateSurface CreateSurfaceFunc
	CreateSimilar CreateSimilarFunc // nil: unsupported
	GetImage      GetImageFunc
	WriteToFile   WriteToFileFunc // nil: default writer
	Cleanup       CleanupFunc     // nil: nothing beyond surface and device
	Synchronize   SynchronizeFunc // nil: no asynchronous GPU work

	Caps Caps
}

// Image extracts the pixels of s through GetImage, or s.Image when the
// target has no extractor.
func (t *Target) Image(s Surface) (*image.RGBA, error) {
	if t.GetImage != nil {
		return t.GetImage(s)
	}
	return s.Image()
}

// Write serializes s to path through WriteToFile or the default writer.
func (t *Target) Write(s Surface, path string) error {
	if t.WriteToFile != nil {
		return t.WriteToFile(s, path)
	}
	return WriteImage(t, s, path)
}

// Sync runs Synchronize; targets without asynchronous work return nil.
func (t *Target) Sync(c Closure) error {
	if t.Synchronize == nil || c == nil {
		return nil
	}
	return t.Synchronize(c)
}

// Release runs Cleanup, or tears down the closure directly when the target
// has no cleanup of its own.
func (t *Target) Release(c Closure) {
	if c == nil {
		return
	}
	if t.Cleanup != nil {
		t.Cleanup(c)
		return
	}
	c.Teardown()
}

// Similar creates a surface like s, or fails with ErrUnsupported.
func (t *Target) Similar(s Surface, content Content, width, height int) (Surface, error) {
	if t.CreateSimilar == nil {
		return nil, fmt.Errorf("%w: %s: create similar", ErrUnsupported, t.Name)
	}
	return t.CreateSimilar(s, content, width, height)
}

// FillColor converts c to the premultiplied pixel a surface with the given
// content stores. Color surfaces drop alpha, compositing c over black.
func FillColor(content Content, c color.Color) color.RGBA {
	p := color.RGBAModel.Convert(c).(color.RGBA)
	if !content.HasAlpha() {
		p.A = 0xff
	}
	return p
}
