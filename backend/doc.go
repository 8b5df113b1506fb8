// Package backend provides the pluggable display/input backend
// abstraction of the simulator.
//
// The backend package decouples the toolkit's rendering and input
// needs from the concrete OS mechanism. Each backend is described by a
// [Descriptor]: a name plus an init hook that allocates the live
// resources and returns a [Handle]. Display backends additionally
// implement [Display], which presents toolkit frames.
//
// # Backend Registration
//
// Which backends exist is decided at build time. The drivers
// subpackage assembles the compiled-in set and constructs the
// [Registry]:
//
//	reg := drivers.New()
//
// The registry is ordered; registration order encodes the priority
// used for default selection (windowed backends before raw
// framebuffer ones). Name lookup is case-insensitive.
//
// # Backend Selection
//
// Use [Registry.Find] to resolve a user-requested name, or
// [Registry.Default] for the platform default:
//
//	d, err := reg.Find("fbdev")
//	if err != nil {
//		// the name is unknown or compiled out
//	}
//
//	h, err := d.Init(cfg)
//
// # Available Backends
//
//   - "sdl": SDL3 window (build tag "sdl")
//   - "fbdev": Linux framebuffer device
//   - "drm": Linux KMS dumb buffer (build tag "drm")
//   - "evdev": Linux input event device, input only
//   - "offscreen": in-memory surface (always available)
package backend
