package backend

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gg"

	"github.com/gogpu/ggsim/event"
)

// Common backend errors.
var (
	// ErrUnknownBackend is returned when a requested backend name is
	// not registered, either because no such backend exists or because
	// it was excluded from this build.
	ErrUnknownBackend = errors.New("backend: unknown backend")

	// ErrNoBackend is returned when the registry holds no display
	// backend at all.
	ErrNoBackend = errors.New("backend: no display backend available")

	// ErrSurfaceLost is returned by Poll or Present when the output
	// surface is gone for good (window destroyed externally, device
	// lost). It forces a graceful shutdown; every other Poll error is
	// treated as transient.
	ErrSurfaceLost = errors.New("backend: surface lost")
)

// InitError reports a backend whose init hook failed. It carries the
// backend name for diagnostics and unwraps to the underlying cause.
type InitError struct {
	Backend string
	Err     error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("backend %q: init: %v", e.Backend, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// Kind distinguishes display backends from input-only ones. A display
// backend owns the output surface; an input-only backend (such as a
// touch event device) is layered on top of an active display backend
// as an additional event source.
type Kind uint8

const (
	// KindDisplay marks a backend that presents frames.
	KindDisplay Kind = iota

	// KindInput marks a backend that only produces input events.
	KindInput
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindDisplay:
		return "display"
	case KindInput:
		return "input"
	default:
		return "unknown"
	}
}

// Config carries the resolved simulator geometry handed to every init
// hook. Device paths are used only by the backends that need them.
type Config struct {
	// Title is the window title for windowed backends.
	Title string

	// Width, Height is the surface size in pixels.
	Width, Height int

	// FramebufferDevice is the device node for the fbdev backend.
	FramebufferDevice string

	// DRMDevice is the card node for the drm backend.
	DRMDevice string

	// PointerDevice is the device node for the evdev backend.
	PointerDevice string
}

// Descriptor is the registered, named record of a backend
// implementation. Descriptors are immutable after registration and
// live for the process duration.
type Descriptor struct {
	// Name is the unique registry key. Canonical names are lower-case;
	// lookup is case-insensitive.
	Name string

	// Kind tells the selector whether Init produces a Display.
	Kind Kind

	// Init allocates the backend's live resources sized from cfg.
	// For KindDisplay descriptors the returned Handle implements
	// Display.
	Init func(cfg Config) (Handle, error)
}

// Handle is the live resource created by a Descriptor's Init hook.
// A handle is owned by exactly one run loop and is not safe for
// concurrent use.
type Handle interface {
	// Poll appends any pending events to dst and returns the extended
	// slice. It never blocks. A returned error wrapping
	// [ErrSurfaceLost] is fatal; any other error is transient and the
	// events returned alongside it are still valid.
	Poll(dst []event.Event) ([]event.Event, error)

	// Close releases the handle's resources. The run loop calls it
	// exactly once.
	Close() error
}

// Display is a Handle that owns an output surface.
type Display interface {
	Handle

	// Size returns the surface size in pixels.
	Size() (width, height int)

	// Present flips the dirty region of frame to the output. The frame
	// layout is the toolkit's RGBA pixmap; dirty is in frame
	// coordinates and is never empty.
	Present(frame *gg.Pixmap, dirty image.Rectangle) error
}
