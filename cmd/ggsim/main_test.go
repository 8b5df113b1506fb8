package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gogpu/ggsim"
	"github.com/gogpu/ggsim/event"
)

func TestRunHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-h"}, &stdout, &stderr); code != 0 {
		t.Fatalf("run(-h) = %d, want 0", code)
	}
	if !strings.Contains(stderr.String(), "ggsim [-V] [-B]") {
		t.Errorf("usage not printed, got %q", stderr.String())
	}
}

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-V"}, &stdout, &stderr); code != 0 {
		t.Fatalf("run(-V) = %d, want 0", code)
	}
	got := strings.TrimSpace(stdout.String())
	if !strings.HasPrefix(got, "ggsim "+ggsim.Version) {
		t.Errorf("version output = %q, want prefix %q", got, "ggsim "+ggsim.Version)
	}
	if !strings.Contains(got, "gg ") {
		t.Errorf("version output = %q, missing toolkit version", got)
	}
}

func TestToolkitVersion(t *testing.T) {
	if got := toolkitVersion(); got == "" {
		t.Error("toolkitVersion() is empty")
	}
}

func TestRunListBackends(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-B"}, &stdout, &stderr); code != 0 {
		t.Fatalf("run(-B) = %d, want 0", code)
	}
	if !strings.Contains(stdout.String(), "offscreen") {
		t.Errorf("backend listing missing offscreen:\n%s", stdout.String())
	}
}

func TestRunUnknownBackend(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-b", "bogus_backend"}, &stdout, &stderr); code != 1 {
		t.Fatalf("run(-b bogus_backend) = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "no such backend: bogus_backend") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestQuitOnKeys(t *testing.T) {
	scene := newDemoScene()
	stopped := 0
	q := quitOnKeys{
		Scene: scene,
		codes: quitKeyCodes("fbdev"),
		stop:  func() { stopped++ },
	}

	q.Input(event.Event{Kind: event.KeyDown, Code: 1}) // KEY_ESC
	if stopped != 1 {
		t.Fatalf("stop calls after escape = %d, want 1", stopped)
	}

	// Other input still reaches the scene.
	q.Input(event.Event{Kind: event.PointerDown, X: 10, Y: 10})
	if !scene.dragging {
		t.Error("pointer event did not reach the wrapped scene")
	}

	// Key release and unrelated keys are forwarded, not treated as quit.
	q.Input(event.Event{Kind: event.KeyUp, Code: 1})
	q.Input(event.Event{Kind: event.KeyDown, Code: 30}) // KEY_A
	if stopped != 1 {
		t.Errorf("stop calls = %d, want 1", stopped)
	}
}

func TestRunBadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"--no-such-option"}, &stdout, &stderr); code != 2 {
		t.Fatalf("run(--no-such-option) = %d, want 2", code)
	}
	if !strings.Contains(stderr.String(), "no-such-option") {
		t.Errorf("stderr should name the option, got %q", stderr.String())
	}
}
