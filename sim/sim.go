// Package sim wires a backend registry, resolved settings, and a
// toolkit scene into a running simulator: it resolves the requested
// backend, initializes it, and drives the frame loop until a quit
// signal or a fatal surface error.
package sim

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/gogpu/ggsim/backend"
	"github.com/gogpu/ggsim/settings"
)

// Package errors.
var (
	// ErrNotInitialized is returned by Run when no display backend has
	// been initialized.
	ErrNotInitialized = errors.New("sim: no display backend initialized")

	// ErrNotIdle is returned when Run or InitBackend is called on a
	// simulator that has already run or is running.
	ErrNotIdle = errors.New("sim: simulator is not idle")
)

// State is the run loop state, observable via [Simulator.State].
type State int32

const (
	// Idle: no backend handle is active yet, or init is in progress.
	Idle State = iota

	// Running: the loop is pumping frames.
	Running

	// Stopping: a quit signal or fatal error was observed; cleanup
	// hooks are running.
	Stopping

	// Terminated: all handles are released. Terminal state.
	Terminated
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Simulator) { s.log = log }
}

// WithFrameInterval sets the target frame cadence. The default is
// about 60 frames per second.
func WithFrameInterval(d time.Duration) Option {
	return func(s *Simulator) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithTitle sets the window title used by windowed backends.
func WithTitle(title string) Option {
	return func(s *Simulator) { s.title = title }
}

type activeHandle struct {
	name   string
	handle backend.Handle
}

// Simulator owns the active backend handles and the run loop.
// All backend and scene calls happen on the goroutine that calls Run;
// only Stop and State are safe to call from elsewhere.
type Simulator struct {
	reg      *backend.Registry
	cfg      settings.Settings
	log      zerolog.Logger
	interval time.Duration
	title    string

	display     backend.Display
	displayName string
	inputs      []activeHandle

	state    atomic.Int32
	quit     chan struct{}
	quitOnce sync.Once
	downOnce sync.Once
}

// New creates a simulator over the given registry and settings.
func New(reg *backend.Registry, cfg settings.Settings, opts ...Option) *Simulator {
	s := &Simulator{
		reg:      reg,
		cfg:      cfg,
		log:      zerolog.Nop(),
		interval: 16 * time.Millisecond,
		title:    "ggsim",
		quit:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current run loop state.
func (s *Simulator) State() State { return State(s.state.Load()) }

// DisplayBackend returns the name of the active primary display
// backend, or the empty string before a successful InitBackend.
func (s *Simulator) DisplayBackend() string { return s.displayName }

// Registry returns the backend registry the simulator selects from.
func (s *Simulator) Registry() *backend.Registry { return s.reg }

func (s *Simulator) backendConfig() backend.Config {
	return backend.Config{
		Title:             s.title,
		Width:             s.cfg.WindowWidth,
		Height:            s.cfg.WindowHeight,
		FramebufferDevice: s.cfg.FramebufferDevice,
		DRMDevice:         s.cfg.DRMDevice,
		PointerDevice:     s.cfg.PointerDevice,
	}
}

// InitBackend resolves name and runs the descriptor's init hook.
//
// An empty name selects the default backend, the first-registered
// display backend. A display descriptor becomes the primary handle;
// only one may be active. An input-only descriptor is layered on top
// of the already-active primary as an additional event source.
//
// An unknown name fails with [backend.ErrUnknownBackend] before any
// init hook runs; a failing init hook is wrapped in
// [backend.InitError] with the backend name attached.
func (s *Simulator) InitBackend(name string) error {
	if s.State() != Idle {
		return ErrNotIdle
	}

	var (
		d   backend.Descriptor
		err error
	)
	if name == "" {
		d, err = s.reg.Default()
	} else {
		d, err = s.reg.Find(name)
	}
	if err != nil {
		return err
	}

	switch d.Kind {
	case backend.KindDisplay:
		if s.display != nil {
			return fmt.Errorf("sim: display backend %q already active, cannot init %q", s.displayName, d.Name)
		}
	case backend.KindInput:
		if s.display == nil {
			return fmt.Errorf("sim: input backend %q requires an active display backend", d.Name)
		}
	}

	h, err := d.Init(s.backendConfig())
	if err != nil {
		return &backend.InitError{Backend: d.Name, Err: err}
	}

	if d.Kind == backend.KindInput {
		s.inputs = append(s.inputs, activeHandle{name: d.Name, handle: h})
		s.log.Info().Str("backend", d.Name).Msg("input backend initialized")
		return nil
	}

	disp, ok := h.(backend.Display)
	if !ok {
		h.Close()
		return &backend.InitError{Backend: d.Name, Err: errors.New("init hook did not return a display handle")}
	}
	s.display = disp
	s.displayName = d.Name
	w, hgt := disp.Size()
	s.log.Info().Str("backend", d.Name).Int("width", w).Int("height", hgt).Msg("display backend initialized")
	return nil
}

// Stop requests cooperative termination of the run loop. It is safe
// to call from any goroutine and more than once; the loop observes it
// at the top of the next iteration or mid-sleep.
func (s *Simulator) Stop() {
	s.quitOnce.Do(func() { close(s.quit) })
}

// Close releases all active handles without running the loop. It is
// for the startup error path: a primary handle exists but Run will
// never be reached (for example because a secondary init failed).
// Run performs the same teardown itself; after Run returns, Close is
// a no-op.
func (s *Simulator) Close() error {
	s.teardown()
	s.state.Store(int32(Terminated))
	return nil
}

// teardown closes every active handle exactly once, in reverse order
// of initialization: inputs first, then the primary display.
func (s *Simulator) teardown() {
	s.downOnce.Do(func() {
		for i := len(s.inputs) - 1; i >= 0; i-- {
			in := s.inputs[i]
			if err := in.handle.Close(); err != nil {
				s.log.Warn().Err(err).Str("backend", in.name).Msg("input backend close failed")
			} else {
				s.log.Debug().Str("backend", in.name).Msg("input backend closed")
			}
		}
		if s.display != nil {
			if err := s.display.Close(); err != nil {
				s.log.Warn().Err(err).Str("backend", s.displayName).Msg("display backend close failed")
			} else {
				s.log.Debug().Str("backend", s.displayName).Msg("display backend closed")
			}
		}
	})
}
