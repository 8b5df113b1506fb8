// Package settings resolves the process-wide simulator configuration.
//
// Values are resolved once, before backend init, with the precedence
// explicit CLI flag > environment variable > built-in default, and are
// read-only afterward.
package settings

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Built-in defaults.
const (
	DefaultWidth  = 800
	DefaultHeight = 480

	DefaultFramebufferDevice = "/dev/fb0"
	DefaultDRMDevice         = "/dev/dri/card0"
	DefaultPointerDevice     = "/dev/input/event0"
)

// Environment variables consulted when the corresponding CLI flag is
// absent. Non-numeric or non-positive dimension values fall back to
// the built-in defaults.
const (
	EnvWidth             = "GGSIM_WINDOW_WIDTH"
	EnvHeight            = "GGSIM_WINDOW_HEIGHT"
	EnvFramebufferDevice = "GGSIM_FRAMEBUFFER_DEVICE"
	EnvDRMDevice         = "GGSIM_DRM_DEVICE"
	EnvPointerDevice     = "GGSIM_POINTER_DEVICE"
)

// Settings is the resolved simulator configuration.
type Settings struct {
	// WindowWidth, WindowHeight is the surface size in pixels.
	WindowWidth  int
	WindowHeight int

	// FramebufferDevice is the device node opened by the fbdev backend.
	FramebufferDevice string

	// DRMDevice is the card node opened by the drm backend.
	DRMDevice string

	// PointerDevice is the device node opened by the evdev backend.
	PointerDevice string
}

// Load resolves the settings. fs may be nil; when given, it must hold
// the "width" and "height" flags, which take precedence over the
// environment when set on the command line.
func Load(fs *pflag.FlagSet) (Settings, error) {
	v := viper.New()

	v.SetDefault("window.width", DefaultWidth)
	v.SetDefault("window.height", DefaultHeight)
	v.SetDefault("framebuffer.device", DefaultFramebufferDevice)
	v.SetDefault("drm.device", DefaultDRMDevice)
	v.SetDefault("pointer.device", DefaultPointerDevice)

	v.BindEnv("window.width", EnvWidth)
	v.BindEnv("window.height", EnvHeight)
	v.BindEnv("framebuffer.device", EnvFramebufferDevice)
	v.BindEnv("drm.device", EnvDRMDevice)
	v.BindEnv("pointer.device", EnvPointerDevice)

	if fs != nil {
		// BindPFlag only takes effect for flags actually set on the
		// command line, preserving the flag > env > default chain.
		for key, name := range map[string]string{
			"window.width":  "width",
			"window.height": "height",
		} {
			f := fs.Lookup(name)
			if f == nil {
				return Settings{}, fmt.Errorf("settings: flag set has no --%s flag", name)
			}
			if err := v.BindPFlag(key, f); err != nil {
				return Settings{}, fmt.Errorf("settings: bind --%s: %w", name, err)
			}
		}
	}

	s := Settings{
		WindowWidth:       v.GetInt("window.width"),
		WindowHeight:      v.GetInt("window.height"),
		FramebufferDevice: v.GetString("framebuffer.device"),
		DRMDevice:         v.GetString("drm.device"),
		PointerDevice:     v.GetString("pointer.device"),
	}

	// A non-numeric environment value reads as zero; treat it, and any
	// non-positive dimension, as unset.
	if s.WindowWidth <= 0 {
		s.WindowWidth = DefaultWidth
	}
	if s.WindowHeight <= 0 {
		s.WindowHeight = DefaultHeight
	}
	return s, nil
}
