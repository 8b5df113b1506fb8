//go:build linux && drm

package drivers

import "github.com/gogpu/ggsim/backend/drm"

func init() { drmDriver = drm.Descriptor }
