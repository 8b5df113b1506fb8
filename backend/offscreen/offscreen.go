// Package offscreen provides an in-memory display backend.
//
// The offscreen backend has no OS dependencies and is compiled into
// every build, so it is the fallback when no windowed or device
// backend is available, and it is what tests use to drive the full
// run loop without hardware.
package offscreen

import (
	"fmt"
	"image"

	"github.com/gogpu/gg"

	"github.com/gogpu/ggsim/backend"
	"github.com/gogpu/ggsim/event"
)

// Name is the registry name of the offscreen backend.
const Name = "offscreen"

// Descriptor returns the registry entry for the offscreen backend.
func Descriptor() backend.Descriptor {
	return backend.Descriptor{
		Name: Name,
		Kind: backend.KindDisplay,
		Init: func(cfg backend.Config) (backend.Handle, error) {
			return New(cfg.Width, cfg.Height)
		},
	}
}

// Surface is the offscreen display handle. It keeps a copy of the
// last presented frame and counts presents, which tests use to assert
// loop behavior. A scripted event sequence can be attached with
// [Surface.Script]; Poll replays it one event per call.
type Surface struct {
	width, height int
	last          *gg.Pixmap
	presents      int
	script        []event.Event
	closed        bool
}

// New creates an offscreen surface of the given size.
func New(width, height int) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("offscreen: invalid size %dx%d", width, height)
	}
	return &Surface{width: width, height: height}, nil
}

// Script queues events that subsequent Poll calls replay in order,
// one per call. Intended for tests and headless demos.
func (s *Surface) Script(evs ...event.Event) {
	s.script = append(s.script, evs...)
}

// Size returns the surface size in pixels.
func (s *Surface) Size() (int, int) { return s.width, s.height }

// Poll replays the next scripted event, if any.
func (s *Surface) Poll(dst []event.Event) ([]event.Event, error) {
	if s.closed {
		return dst, backend.ErrSurfaceLost
	}
	if len(s.script) > 0 {
		dst = append(dst, s.script[0])
		s.script = s.script[1:]
	}
	return dst, nil
}

// Present copies the frame so the last presented pixels can be
// inspected after the loop has moved on.
func (s *Surface) Present(frame *gg.Pixmap, dirty image.Rectangle) error {
	if s.closed {
		return backend.ErrSurfaceLost
	}
	if s.last == nil {
		s.last = gg.NewPixmap(frame.Width(), frame.Height())
	}
	copy(s.last.Data(), frame.Data())
	s.presents++
	return nil
}

// Presents returns the number of frames presented so far.
func (s *Surface) Presents() int { return s.presents }

// Last returns the most recently presented frame, or nil if nothing
// has been presented yet.
func (s *Surface) Last() *gg.Pixmap { return s.last }

// Closed reports whether Close has been called.
func (s *Surface) Closed() bool { return s.closed }

// Close releases the surface. Further Poll and Present calls fail
// with [backend.ErrSurfaceLost].
func (s *Surface) Close() error {
	s.closed = true
	return nil
}
