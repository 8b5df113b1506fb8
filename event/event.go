// Package event defines the input events exchanged between backends
// and the run loop, and a bounded queue for backends that read devices
// on their own goroutine.
package event

import "time"

// Kind identifies the type of an input event.
type Kind uint8

const (
	// None is the zero Kind; it carries no information.
	None Kind = iota

	// Quit is a close/quit request from a backend (window close
	// button, terminal signal translated by the caller, etc.).
	Quit

	// PointerMove reports an absolute pointer position.
	PointerMove

	// PointerDown reports a press at the current pointer position.
	PointerDown

	// PointerUp reports a release at the current pointer position.
	PointerUp

	// KeyDown reports a key press.
	KeyDown

	// KeyUp reports a key release.
	KeyUp
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Quit:
		return "quit"
	case PointerMove:
		return "pointer-move"
	case PointerDown:
		return "pointer-down"
	case PointerUp:
		return "pointer-up"
	case KeyDown:
		return "key-down"
	case KeyUp:
		return "key-up"
	default:
		return "unknown"
	}
}

// Event is a single input event. It is a small value type so backends
// can produce them without allocation.
type Event struct {
	Kind Kind
	Time time.Time

	// X, Y is the absolute pointer position in surface pixels.
	// Valid for the pointer kinds.
	X, Y int

	// Code is the key or button code for Key* and Pointer* events.
	// The namespace is backend-specific; evdev uses kernel key codes.
	Code uint16
}
