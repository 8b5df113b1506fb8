//go:build linux

package drivers

import "github.com/gogpu/ggsim/backend/evdev"

func init() { evdevDriver = evdev.Descriptor }
