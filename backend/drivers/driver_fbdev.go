//go:build linux

package drivers

import "github.com/gogpu/ggsim/backend/fbdev"

func init() { fbdevDriver = fbdev.Descriptor }
