//go:build sdl

package main

import (
	"runtime"

	"github.com/Zyko0/go-sdl3/bin/binsdl"
)

// SDL requires the video subsystem to stay on the main OS thread.
func init() {
	runtime.LockOSThread()
}

// loadSDL extracts and loads the bundled SDL3 shared library and
// returns its unloader.
func loadSDL() func() {
	lib := binsdl.Load()
	return lib.Unload
}
