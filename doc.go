// Package ggsim runs a gg-toolkit UI on a desktop host by selecting,
// initializing, and driving one of several interchangeable
// display/input backends.
//
// # Overview
//
// The harness owns the frame pixmap, hands it to the toolkit glue for
// drawing, and presents the bytes through whichever backend is active.
// Which backends exist is decided at build time; selecting and driving
// them is unconditional.
//
// # Quick Start
//
//	reg := drivers.New()
//	s := sim.New(reg, cfg)
//	if err := s.InitBackend(""); err != nil { // "" selects the default
//		return err
//	}
//	defer s.Close()
//	return s.Run(ctx, scene)
//
// # Architecture
//
// The module is organized into:
//   - backend: descriptors, capability interfaces, and the registry
//   - backend/drivers: the compile-time backend set
//   - backend/{sdl,fbdev,drm,evdev,offscreen}: the backends themselves
//   - event: the input event model and a bounded queue
//   - settings: flag/env/default configuration resolution
//   - sim: backend selection, init, and the steady-cadence run loop
//   - cmd/ggsim: the command-line simulator with a demo screen
//
// # Backends
//
// A build carries at most one active display backend plus any number
// of layered input backends. The sdl backend needs the SDL3 shared
// library and the "sdl" build tag; fbdev and evdev are linux-only; drm
// additionally needs the "drm" tag; offscreen is always present.
package ggsim

// Version information
const (
	// Version is the current version of the simulator harness
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
