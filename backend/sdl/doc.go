// Package sdl provides a windowed display backend on SDL3. It is the
// preferred backend on desktop hosts and is enabled with the "sdl"
// build tag, which requires the SDL3 shared library at run time.
package sdl
