// Package fbdev provides a display backend on the Linux framebuffer
// device. It is compiled on Linux only; on other systems the package
// is empty and the backend is absent from the registry.
package fbdev
