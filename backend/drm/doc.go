// Package drm provides a display backend on a Linux KMS dumb buffer.
// It drives a bare DRM device without a windowing system, picking the
// preferred mode of the first connected connector. The backend is
// compiled on Linux with the "drm" build tag.
package drm
