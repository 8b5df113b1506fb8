// Command ggsim runs a gg-toolkit demo screen on a desktop host,
// driving one of the compiled-in display/input backends.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/gogpu/ggsim"
	"github.com/gogpu/ggsim/backend/drivers"
	"github.com/gogpu/ggsim/event"
	"github.com/gogpu/ggsim/settings"
	"github.com/gogpu/ggsim/sim"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("ggsim", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SortFlags = false
	fs.Usage = func() {
		fmt.Fprintf(stderr, "\nggsim [-V] [-B] [-b backend_name] [-W window_width] [-H window_height]\n\n%s\n", fs.FlagUsages())
	}

	var (
		backendName = fs.StringP("backend", "b", "", "select the display backend by name")
		list        = fs.BoolP("list-backends", "B", false, "list supported backends and exit")
		version     = fs.BoolP("version", "V", false, "print the toolkit version and exit")
		help        = fs.BoolP("help", "h", false, "print usage and exit")
	)
	fs.IntP("width", "W", settings.DefaultWidth, "window width in pixels")
	fs.IntP("height", "H", settings.DefaultHeight, "window height in pixels")

	if err := fs.Parse(args); err != nil {
		// pflag's error already names the offending option.
		fmt.Fprintln(stderr, err)
		fs.Usage()
		return 2
	}

	switch {
	case *help:
		fs.Usage()
		return 0
	case *version:
		fmt.Fprintf(stdout, "ggsim %s (gg %s)\n", ggsim.Version, toolkitVersion())
		return 0
	}

	reg := drivers.New()
	if *list {
		reg.WriteSupported(stdout)
		return 0
	}

	// Reject an unsupported name before anything is initialized.
	if *backendName != "" && !reg.IsSupported(*backendName) {
		fmt.Fprintf(stderr, "ggsim: no such backend: %s\n", *backendName)
		return 1
	}

	cfg, err := settings.Load(fs)
	if err != nil {
		fmt.Fprintln(stderr, "ggsim:", err)
		return 1
	}

	log := newLogger(stderr)
	log.Debug().
		Str("version", ggsim.Version).
		Int("width", cfg.WindowWidth).
		Int("height", cfg.WindowHeight).
		Strs("backends", reg.Names()).
		Msg("simulator configured")

	unload := loadSDL()
	defer unload()

	s := sim.New(reg, cfg, sim.WithLogger(log), sim.WithTitle("ggsim"))
	if err := s.InitBackend(*backendName); err != nil {
		fmt.Fprintln(stderr, "ggsim:", err)
		return 1
	}
	defer s.Close()

	// Raw framebuffer displays produce no input of their own; layer the
	// event-device backend on top when it is compiled in. A failure
	// here is fatal, like the primary path.
	switch s.DisplayBackend() {
	case "fbdev", "drm":
		if reg.IsSupported("evdev") {
			if err := s.InitBackend("evdev"); err != nil {
				fmt.Fprintln(stderr, "ggsim:", err)
				return 1
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scene := quitOnKeys{
		Scene: newDemoScene(),
		codes: quitKeyCodes(s.DisplayBackend()),
		stop:  s.Stop,
	}
	if err := s.Run(ctx, scene); err != nil {
		fmt.Fprintln(stderr, "ggsim:", err)
		return 1
	}
	return 0
}

// toolkitVersion reports the gg module version recorded in the
// binary's build info.
func toolkitVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, dep := range info.Deps {
			if dep.Path == "github.com/gogpu/gg" {
				return strings.TrimPrefix(dep.Version, "v")
			}
		}
	}
	return "unknown"
}

// quitOnKeys stops the simulator when Escape or q is pressed, and
// forwards everything else to the wrapped scene. Key codes are
// backend-specific, so the set is chosen from the active display.
type quitOnKeys struct {
	sim.Scene
	codes map[uint16]bool
	stop  func()
}

func (q quitOnKeys) Input(ev event.Event) {
	if ev.Kind == event.KeyDown && q.codes[ev.Code] {
		q.stop()
		return
	}
	q.Scene.Input(ev)
}

// quitKeyCodes returns the Escape and q codes in the code namespace of
// the named display backend: SDL scancodes for sdl, kernel key codes
// everywhere else.
func quitKeyCodes(name string) map[uint16]bool {
	if name == "sdl" {
		return map[uint16]bool{41: true, 20: true}
	}
	return map[uint16]bool{1: true, 16: true}
}

// newLogger builds the console logger. GGSIM_LOG_LEVEL selects the
// level (debug, info, warn, error); the default is info.
func newLogger(w io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	if s := os.Getenv("GGSIM_LOG_LEVEL"); s != "" {
		if l, err := zerolog.ParseLevel(s); err == nil && l != zerolog.NoLevel {
			level = l
		}
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
