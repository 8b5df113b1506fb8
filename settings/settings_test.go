package settings

import (
	"testing"

	"github.com/spf13/pflag"
)

func flags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.IntP("width", "W", DefaultWidth, "")
	fs.IntP("height", "H", DefaultHeight, "")
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse(%v) error = %v", args, err)
	}
	return fs
}

func TestDefaults(t *testing.T) {
	s, err := Load(flags(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.WindowWidth != 800 || s.WindowHeight != 480 {
		t.Errorf("defaults = %dx%d, want 800x480", s.WindowWidth, s.WindowHeight)
	}
	if s.FramebufferDevice != "/dev/fb0" {
		t.Errorf("FramebufferDevice = %q, want /dev/fb0", s.FramebufferDevice)
	}
	if s.PointerDevice != "/dev/input/event0" {
		t.Errorf("PointerDevice = %q, want /dev/input/event0", s.PointerDevice)
	}
}

func TestEnvOverridesDefault(t *testing.T) {
	t.Setenv(EnvWidth, "640")

	s, err := Load(flags(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.WindowWidth != 640 {
		t.Errorf("WindowWidth = %d, want 640 from %s", s.WindowWidth, EnvWidth)
	}
	if s.WindowHeight != 480 {
		t.Errorf("WindowHeight = %d, want default 480", s.WindowHeight)
	}
}

func TestFlagOverridesEnv(t *testing.T) {
	t.Setenv(EnvWidth, "640")

	s, err := Load(flags(t, "-W", "1024"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.WindowWidth != 1024 {
		t.Errorf("WindowWidth = %d, want CLI value 1024 over env 640", s.WindowWidth)
	}
}

// An unset flag must not shadow the environment with its default value.
func TestUnsetFlagFallsThroughToEnv(t *testing.T) {
	t.Setenv(EnvHeight, "600")

	s, err := Load(flags(t, "-W", "1024"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.WindowHeight != 600 {
		t.Errorf("WindowHeight = %d, want env value 600", s.WindowHeight)
	}
}

func TestNonNumericEnvFallsBack(t *testing.T) {
	t.Setenv(EnvWidth, "eight hundred")
	t.Setenv(EnvHeight, "-5")

	s, err := Load(flags(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.WindowWidth != 800 {
		t.Errorf("WindowWidth = %d, want default 800 for non-numeric env", s.WindowWidth)
	}
	if s.WindowHeight != 480 {
		t.Errorf("WindowHeight = %d, want default 480 for non-positive env", s.WindowHeight)
	}
}

func TestNilFlagSet(t *testing.T) {
	s, err := Load(nil)
	if err != nil {
		t.Fatalf("Load(nil) error = %v", err)
	}
	if s.WindowWidth != 800 || s.WindowHeight != 480 {
		t.Errorf("Load(nil) = %dx%d, want 800x480", s.WindowWidth, s.WindowHeight)
	}
}

func TestDeviceEnvOverrides(t *testing.T) {
	t.Setenv(EnvPointerDevice, "/dev/input/event3")
	t.Setenv(EnvDRMDevice, "/dev/dri/card1")

	s, err := Load(flags(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.PointerDevice != "/dev/input/event3" {
		t.Errorf("PointerDevice = %q, want /dev/input/event3", s.PointerDevice)
	}
	if s.DRMDevice != "/dev/dri/card1" {
		t.Errorf("DRMDevice = %q, want /dev/dri/card1", s.DRMDevice)
	}
}

func TestDeviceDefaults(t *testing.T) {
	s, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.DRMDevice != DefaultDRMDevice {
		t.Errorf("DRMDevice = %q, want %q", s.DRMDevice, DefaultDRMDevice)
	}
}
