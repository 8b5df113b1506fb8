package evdev

import (
	"os"
	"testing"
	"time"
	"unsafe"

	"github.com/gogpu/ggsim/event"
)

// pipeDevice wires a Device to the read end of a pipe so tests can
// feed it crafted kernel records.
func pipeDevice(t *testing.T) (*Device, *os.File) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	d := &Device{
		file:  r,
		queue: event.NewQueue(256),
		done:  make(chan struct{}),
	}
	go d.read()
	t.Cleanup(func() {
		w.Close()
		d.Close()
	})
	return d, w
}

func writeRecords(t *testing.T, w *os.File, recs ...inputEvent) {
	t.Helper()
	buf := make([]byte, 0, len(recs)*eventSize)
	for i := range recs {
		buf = append(buf, unsafe.Slice((*byte)(unsafe.Pointer(&recs[i])), eventSize)...)
	}
	if _, err := w.Write(buf); err != nil {
		t.Fatalf("write records: %v", err)
	}
}

// waitEvents polls until at least n events arrived or the deadline
// passes. The reader goroutine delivers asynchronously.
func waitEvents(t *testing.T, d *Device, n int) []event.Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	var evs []event.Event
	for time.Now().Before(deadline) {
		var err error
		evs, err = d.Poll(evs)
		if err != nil {
			t.Fatalf("Poll() error = %v", err)
		}
		if len(evs) >= n {
			return evs
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d events, got %v", n, evs)
	return nil
}

func TestAbsoluteMotionFlushedOnSyn(t *testing.T) {
	d, w := pipeDevice(t)

	writeRecords(t, w,
		inputEvent{Type: evAbs, Code: absX, Value: 120},
		inputEvent{Type: evAbs, Code: absY, Value: 80},
		inputEvent{Type: evSyn, Code: synReport},
	)

	evs := waitEvents(t, d, 1)
	if evs[0].Kind != event.PointerMove {
		t.Fatalf("event kind = %v, want pointer-move", evs[0].Kind)
	}
	if evs[0].X != 120 || evs[0].Y != 80 {
		t.Errorf("pointer at (%d, %d), want (120, 80)", evs[0].X, evs[0].Y)
	}
}

func TestRelativeMotionAccumulates(t *testing.T) {
	d, w := pipeDevice(t)

	writeRecords(t, w,
		inputEvent{Type: evRel, Code: relX, Value: 10},
		inputEvent{Type: evRel, Code: relY, Value: 5},
		inputEvent{Type: evSyn, Code: synReport},
		inputEvent{Type: evRel, Code: relX, Value: -3},
		inputEvent{Type: evSyn, Code: synReport},
	)

	evs := waitEvents(t, d, 2)
	if evs[0].X != 10 || evs[0].Y != 5 {
		t.Errorf("first move at (%d, %d), want (10, 5)", evs[0].X, evs[0].Y)
	}
	if evs[1].X != 7 || evs[1].Y != 5 {
		t.Errorf("second move at (%d, %d), want (7, 5)", evs[1].X, evs[1].Y)
	}
}

func TestTouchButtonMapsToPointer(t *testing.T) {
	d, w := pipeDevice(t)

	writeRecords(t, w,
		inputEvent{Type: evAbs, Code: absX, Value: 50},
		inputEvent{Type: evAbs, Code: absY, Value: 60},
		inputEvent{Type: evKey, Code: btnTouch, Value: 1},
		inputEvent{Type: evSyn, Code: synReport},
		inputEvent{Type: evKey, Code: btnTouch, Value: 0},
		inputEvent{Type: evSyn, Code: synReport},
	)

	evs := waitEvents(t, d, 3)
	if evs[0].Kind != event.PointerDown || evs[0].X != 50 || evs[0].Y != 60 {
		t.Errorf("first event = %v at (%d, %d), want pointer-down at (50, 60)", evs[0].Kind, evs[0].X, evs[0].Y)
	}
	// The SYN after the press flushes the position, then the release.
	var sawUp bool
	for _, ev := range evs[1:] {
		if ev.Kind == event.PointerUp {
			sawUp = true
		}
	}
	if !sawUp {
		t.Errorf("no pointer-up among %v", evs[1:])
	}
}

func TestKeyEvents(t *testing.T) {
	d, w := pipeDevice(t)

	const keyEnter = 28
	writeRecords(t, w,
		inputEvent{Type: evKey, Code: keyEnter, Value: 1},
		inputEvent{Type: evKey, Code: keyEnter, Value: 0},
	)

	evs := waitEvents(t, d, 2)
	if evs[0].Kind != event.KeyDown || evs[0].Code != keyEnter {
		t.Errorf("first event = %v code %d, want key-down code %d", evs[0].Kind, evs[0].Code, keyEnter)
	}
	if evs[1].Kind != event.KeyUp {
		t.Errorf("second event = %v, want key-up", evs[1].Kind)
	}
}

// A dead device surfaces once as a transient Poll error, then goes
// quiet; it never pretends to be a lost display surface.
func TestReadErrorIsTransient(t *testing.T) {
	d, w := pipeDevice(t)
	w.Close()

	select {
	case <-d.done:
	case <-time.After(2 * time.Second):
		t.Fatal("reader did not exit after the device went away")
	}

	_, err := d.Poll(nil)
	if err == nil {
		t.Fatal("Poll() error = nil after device death, want transient error")
	}
	if _, err := d.Poll(nil); err != nil {
		t.Errorf("second Poll() error = %v, want nil (reported once)", err)
	}
}
