//go:build !sdl

package main

// loadSDL is a no-op in builds without the SDL backend.
func loadSDL() func() {
	return func() {}
}
