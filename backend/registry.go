package backend

import (
	"fmt"
	"io"
	"strings"
)

// Registry is the ordered catalog of backends available in this build.
// Registration order encodes default-selection priority: windowed
// backends are registered before raw framebuffer ones, so the default
// selection prefers a window when both are compiled in.
//
// A Registry is append-only during construction and read-only
// afterward. Name matching is case-insensitive everywhere; canonical
// names are lower-case.
type Registry struct {
	list  []Descriptor
	index map[string]int // folded name -> position in list
}

// NewRegistry builds a registry from the given descriptors, in order.
// A name that is already present is skipped, so registering the same
// compiled-in set twice yields an identical registry.
func NewRegistry(ds ...Descriptor) *Registry {
	r := &Registry{index: make(map[string]int, len(ds))}
	for _, d := range ds {
		r.add(d)
	}
	return r
}

func (r *Registry) add(d Descriptor) {
	key := strings.ToLower(d.Name)
	if key == "" {
		return
	}
	if _, ok := r.index[key]; ok {
		return
	}
	r.index[key] = len(r.list)
	r.list = append(r.list, d)
}

// Len returns the number of registered backends.
func (r *Registry) Len() int { return len(r.list) }

// IsSupported reports whether a backend with the given name is
// registered. It is side-effect free; unknown, compiled-out, and empty
// names all report false.
func (r *Registry) IsSupported(name string) bool {
	if name == "" {
		return false
	}
	_, ok := r.index[strings.ToLower(name)]
	return ok
}

// Find returns the descriptor registered under name.
// It returns an error wrapping [ErrUnknownBackend] when no backend
// with that name is registered.
func (r *Registry) Find(name string) (Descriptor, error) {
	i, ok := r.index[strings.ToLower(name)]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	return r.list[i], nil
}

// Default returns the first-registered display backend, which is the
// backend selected when the user does not request one by name.
// It returns [ErrNoBackend] when no display backend is compiled in.
func (r *Registry) Default() (Descriptor, error) {
	for _, d := range r.list {
		if d.Kind == KindDisplay {
			return d, nil
		}
	}
	return Descriptor{}, ErrNoBackend
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.list))
	for i, d := range r.list {
		names[i] = d.Name
	}
	return names
}

// WriteSupported writes an enumerated, human-readable listing of the
// registered backends to w, in registration order. Input-only backends
// are marked as such.
func (r *Registry) WriteSupported(w io.Writer) {
	fmt.Fprintln(w, "Supported backends:")
	for i, d := range r.list {
		if d.Kind == KindInput {
			fmt.Fprintf(w, "  %d. %s (input only)\n", i+1, d.Name)
			continue
		}
		fmt.Fprintf(w, "  %d. %s\n", i+1, d.Name)
	}
}
