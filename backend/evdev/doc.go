// Package evdev provides an input-only backend reading a Linux input
// event device (touchscreen, mouse). It is layered on top of a
// display backend that produces no input of its own, such as fbdev or
// drm. The package is compiled on Linux only.
package evdev
