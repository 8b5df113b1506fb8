//go:build sdl

package sdl

import (
	"fmt"
	"image"
	"time"

	sdl3 "github.com/Zyko0/go-sdl3/sdl"
	"github.com/gogpu/gg"

	"github.com/gogpu/ggsim/backend"
	"github.com/gogpu/ggsim/event"
)

// Name is the registry name of the SDL backend.
const Name = "sdl"

// Descriptor returns the registry entry for the SDL backend.
func Descriptor() backend.Descriptor {
	return backend.Descriptor{
		Name: Name,
		Kind: backend.KindDisplay,
		Init: func(cfg backend.Config) (backend.Handle, error) {
			return Open(cfg.Title, cfg.Width, cfg.Height)
		},
	}
}

// Window is the live SDL display handle: a window, a renderer, and a
// streaming texture the toolkit frame is uploaded into.
type Window struct {
	window   *sdl3.Window
	renderer *sdl3.Renderer
	texture  *sdl3.Texture
	width    int
	height   int
	closed   bool
}

// Open creates the window and its presentation pipeline.
func Open(title string, width, height int) (*Window, error) {
	if err := sdl3.Init(sdl3.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("sdl: init: %w", err)
	}

	win, ren, err := sdl3.CreateWindowAndRenderer(title, width, height, 0)
	if err != nil {
		sdl3.Quit()
		return nil, fmt.Errorf("sdl: create window: %w", err)
	}

	// ABGR8888 is byte-order RGBA on little-endian hosts, matching the
	// toolkit pixmap layout, so Present is a straight upload.
	tex, err := ren.CreateTexture(sdl3.PIXELFORMAT_ABGR8888, sdl3.TEXTUREACCESS_STREAMING, width, height)
	if err != nil {
		ren.Destroy()
		win.Destroy()
		sdl3.Quit()
		return nil, fmt.Errorf("sdl: create texture: %w", err)
	}

	return &Window{
		window:   win,
		renderer: ren,
		texture:  tex,
		width:    width,
		height:   height,
	}, nil
}

// Size returns the window size in pixels.
func (w *Window) Size() (int, int) { return w.width, w.height }

// Poll drains the SDL event queue, translating window and input
// events. A close request surfaces as a quit event.
func (w *Window) Poll(dst []event.Event) ([]event.Event, error) {
	if w.closed {
		return dst, backend.ErrSurfaceLost
	}

	now := time.Now()
	var ev sdl3.Event
	for sdl3.PollEvent(&ev) {
		switch ev.Type {
		case sdl3.EVENT_QUIT, sdl3.EVENT_WINDOW_CLOSE_REQUESTED:
			dst = append(dst, event.Event{Kind: event.Quit, Time: now})
		case sdl3.EVENT_MOUSE_MOTION:
			m := ev.MouseMotionEvent()
			dst = append(dst, event.Event{
				Kind: event.PointerMove,
				Time: now,
				X:    int(m.X),
				Y:    int(m.Y),
			})
		case sdl3.EVENT_MOUSE_BUTTON_DOWN, sdl3.EVENT_MOUSE_BUTTON_UP:
			b := ev.MouseButtonEvent()
			kind := event.PointerDown
			if ev.Type == sdl3.EVENT_MOUSE_BUTTON_UP {
				kind = event.PointerUp
			}
			dst = append(dst, event.Event{
				Kind: kind,
				Time: now,
				X:    int(b.X),
				Y:    int(b.Y),
				Code: uint16(b.Button),
			})
		case sdl3.EVENT_KEY_DOWN, sdl3.EVENT_KEY_UP:
			k := ev.KeyboardEvent()
			kind := event.KeyDown
			if ev.Type == sdl3.EVENT_KEY_UP {
				kind = event.KeyUp
			}
			dst = append(dst, event.Event{
				Kind: kind,
				Time: now,
				Code: uint16(k.Scancode),
			})
		}
	}
	return dst, nil
}

// Present uploads the frame into the streaming texture and flips.
// Texture uploads are full-width rows, so the dirty region is widened
// to full rows before the update.
func (w *Window) Present(frame *gg.Pixmap, dirty image.Rectangle) error {
	if w.closed {
		return backend.ErrSurfaceLost
	}
	bounds := image.Rect(0, 0, w.width, w.height)
	dirty = dirty.Intersect(bounds).Intersect(image.Rect(0, 0, frame.Width(), frame.Height()))
	if dirty.Empty() {
		return nil
	}

	pitch := frame.Width() * 4
	rows := image.Rect(0, dirty.Min.Y, w.width, dirty.Max.Y)
	rect := &sdl3.Rect{
		X: int32(rows.Min.X),
		Y: int32(rows.Min.Y),
		W: int32(rows.Dx()),
		H: int32(rows.Dy()),
	}
	if err := w.texture.Update(rect, frame.Data()[rows.Min.Y*pitch:rows.Max.Y*pitch], int32(pitch)); err != nil {
		return fmt.Errorf("sdl: texture update: %w", err)
	}

	if err := w.renderer.RenderTexture(w.texture, nil, nil); err != nil {
		return fmt.Errorf("sdl: render: %w", err)
	}
	if err := w.renderer.Present(); err != nil {
		return fmt.Errorf("%w: %v", backend.ErrSurfaceLost, err)
	}
	return nil
}

// Close destroys the texture, renderer, and window, and shuts SDL
// down.
func (w *Window) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.texture.Destroy()
	w.renderer.Destroy()
	w.window.Destroy()
	sdl3.Quit()
	return nil
}
