// Package drivers assembles the set of backends enabled at build time
// into a registry.
//
// The registry and selector logic is unconditional; only this package
// knows which backends a given build carries. Each optional backend
// contributes itself through a hook variable set from an init function
// in a build-tagged file, so excluded backends cost nothing and their
// names are simply absent from the registry.
package drivers

import (
	"github.com/gogpu/ggsim/backend"
	"github.com/gogpu/ggsim/backend/offscreen"
)

// Per-backend hooks. A nil hook means the backend is excluded from
// this build. The walk order in New encodes default-selection
// priority: the SDL window first, then raw framebuffer devices, with
// the offscreen surface as the always-present fallback.
var (
	sdlDriver   func() backend.Descriptor // build tag "sdl"
	fbdevDriver func() backend.Descriptor // linux
	drmDriver   func() backend.Descriptor // linux + build tag "drm"
	evdevDriver func() backend.Descriptor // linux
)

// New builds the registry of compiled-in backends. Calling it again
// returns an equal registry; the underlying set is fixed at build
// time.
func New() *backend.Registry {
	var ds []backend.Descriptor
	for _, hook := range []func() backend.Descriptor{
		sdlDriver,
		fbdevDriver,
		drmDriver,
		evdevDriver,
	} {
		if hook != nil {
			ds = append(ds, hook())
		}
	}
	ds = append(ds, offscreen.Descriptor())
	return backend.NewRegistry(ds...)
}
