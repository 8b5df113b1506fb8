//go:build sdl

package drivers

import "github.com/gogpu/ggsim/backend/sdl"

func init() { sdlDriver = sdl.Descriptor }
