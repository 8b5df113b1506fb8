package sim

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/ggsim/backend"
	"github.com/gogpu/ggsim/backend/offscreen"
	"github.com/gogpu/ggsim/event"
	"github.com/gogpu/ggsim/settings"
)

// fakeHandle records lifecycle calls and can be scripted to fail.
type fakeHandle struct {
	name    string
	events  []event.Event
	pollErr error
	polls   int
	closes  int
}

func (f *fakeHandle) Poll(dst []event.Event) ([]event.Event, error) {
	f.polls++
	dst = append(dst, f.events...)
	f.events = nil
	return dst, f.pollErr
}

func (f *fakeHandle) Close() error {
	f.closes++
	return nil
}

func testSettings() settings.Settings {
	return settings.Settings{WindowWidth: 32, WindowHeight: 24}
}

func testRegistry(t *testing.T, initched map[string]*int) *backend.Registry {
	t.Helper()
	track := func(name string, kind backend.Kind, init func(backend.Config) (backend.Handle, error)) backend.Descriptor {
		return backend.Descriptor{
			Name: name,
			Kind: kind,
			Init: func(cfg backend.Config) (backend.Handle, error) {
				if initched != nil {
					if n, ok := initched[name]; ok {
						*n++
					}
				}
				return init(cfg)
			},
		}
	}
	display := func(cfg backend.Config) (backend.Handle, error) {
		return offscreen.New(cfg.Width, cfg.Height)
	}
	input := func(cfg backend.Config) (backend.Handle, error) {
		return &fakeHandle{name: "touch"}, nil
	}
	return backend.NewRegistry(
		track("window", backend.KindDisplay, display),
		track("fb", backend.KindDisplay, display),
		track("touch", backend.KindInput, input),
	)
}

func TestInitBackendDefaultIsFirstRegistered(t *testing.T) {
	inits := map[string]*int{"window": new(int), "fb": new(int)}

	s := New(testRegistry(t, inits), testSettings())
	if err := s.InitBackend(""); err != nil {
		t.Fatalf("InitBackend(\"\") error = %v", err)
	}
	defer s.Close()

	if *inits["window"] != 1 {
		t.Errorf("default selection ran the window init %d times, want 1", *inits["window"])
	}
	if *inits["fb"] != 0 {
		t.Errorf("default selection ran the fb init %d times, want 0", *inits["fb"])
	}
}

func TestInitBackendUnknownRunsNoInit(t *testing.T) {
	inits := map[string]*int{"window": new(int), "fb": new(int)}

	s := New(testRegistry(t, inits), testSettings())
	err := s.InitBackend("bogus_backend")
	if !errors.Is(err, backend.ErrUnknownBackend) {
		t.Fatalf("InitBackend(bogus_backend) error = %v, want ErrUnknownBackend", err)
	}
	if !strings.Contains(err.Error(), "bogus_backend") {
		t.Errorf("error %q does not name the requested backend", err)
	}
	for name, n := range inits {
		if *n != 0 {
			t.Errorf("init hook for %q ran %d times on an unknown-name failure, want 0", name, *n)
		}
	}
}

func TestInitBackendByName(t *testing.T) {
	s := New(testRegistry(t, nil), testSettings())
	if err := s.InitBackend("fb"); err != nil {
		t.Fatalf("InitBackend(fb) error = %v", err)
	}
	defer s.Close()

	if s.displayName != "fb" {
		t.Errorf("displayName = %q, want %q", s.displayName, "fb")
	}
	w, h := s.display.Size()
	if w != 32 || h != 24 {
		t.Errorf("display sized %dx%d, want 32x24 from settings", w, h)
	}
}

func TestInitBackendSecondDisplayRejected(t *testing.T) {
	s := New(testRegistry(t, nil), testSettings())
	if err := s.InitBackend("window"); err != nil {
		t.Fatalf("InitBackend(window) error = %v", err)
	}
	defer s.Close()

	if err := s.InitBackend("fb"); err == nil {
		t.Error("second display InitBackend error = nil, want error")
	}
}

func TestInitBackendInputLayering(t *testing.T) {
	s := New(testRegistry(t, nil), testSettings())

	// An input backend cannot come first.
	if err := s.InitBackend("touch"); err == nil {
		t.Fatal("InitBackend(touch) before a display error = nil, want error")
	}

	if err := s.InitBackend("window"); err != nil {
		t.Fatalf("InitBackend(window) error = %v", err)
	}
	defer s.Close()

	// Layering is additive: the primary stays active.
	if err := s.InitBackend("touch"); err != nil {
		t.Fatalf("InitBackend(touch) error = %v", err)
	}
	if s.display == nil || s.displayName != "window" {
		t.Errorf("primary display replaced by input layering: %q", s.displayName)
	}
	if len(s.inputs) != 1 {
		t.Errorf("len(inputs) = %d, want 1", len(s.inputs))
	}
}

func TestInitBackendFailureWrapsName(t *testing.T) {
	cause := errors.New("cannot open device")
	reg := backend.NewRegistry(backend.Descriptor{
		Name: "fb",
		Kind: backend.KindDisplay,
		Init: func(backend.Config) (backend.Handle, error) { return nil, cause },
	})

	s := New(reg, testSettings())
	err := s.InitBackend("fb")

	var ie *backend.InitError
	if !errors.As(err, &ie) {
		t.Fatalf("InitBackend error = %T, want *backend.InitError", err)
	}
	if ie.Backend != "fb" {
		t.Errorf("InitError.Backend = %q, want %q", ie.Backend, "fb")
	}
	if !errors.Is(err, cause) {
		t.Error("InitError does not unwrap to the init hook's error")
	}
}

func TestCloseReleasesHandles(t *testing.T) {
	s := New(testRegistry(t, nil), testSettings())
	if err := s.InitBackend("window"); err != nil {
		t.Fatalf("InitBackend(window) error = %v", err)
	}
	if err := s.InitBackend("touch"); err != nil {
		t.Fatalf("InitBackend(touch) error = %v", err)
	}

	surf := s.display.(*offscreen.Surface)
	in := s.inputs[0].handle.(*fakeHandle)

	s.Close()
	s.Close() // idempotent

	if !surf.Closed() {
		t.Error("display handle not closed by Close")
	}
	if in.closes != 1 {
		t.Errorf("input handle closed %d times, want exactly 1", in.closes)
	}
	if got := s.State(); got != Terminated {
		t.Errorf("State() after Close = %v, want terminated", got)
	}
}

func TestStateString(t *testing.T) {
	for st, want := range map[State]string{
		Idle:       "idle",
		Running:    "running",
		Stopping:   "stopping",
		Terminated: "terminated",
	} {
		if got := st.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", st, got, want)
		}
	}
}
