//go:build linux

package evdev

import (
	"fmt"
	"os"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/gogpu/ggsim/backend"
	"github.com/gogpu/ggsim/event"
)

// Name is the registry name of the event-device backend.
const Name = "evdev"

// Descriptor returns the registry entry for the event-device backend.
func Descriptor() backend.Descriptor {
	return backend.Descriptor{
		Name: Name,
		Kind: backend.KindInput,
		Init: func(cfg backend.Config) (backend.Handle, error) {
			return Open(cfg.PointerDevice)
		},
	}
}

// inputEvent mirrors the kernel's struct input_event.
type inputEvent struct {
	Time  unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

const eventSize = int(unsafe.Sizeof(inputEvent{}))

// Kernel event types and codes from linux/input-event-codes.h.
const (
	evSyn = 0x00
	evKey = 0x01
	evRel = 0x02
	evAbs = 0x03

	synReport = 0x00

	relX = 0x00
	relY = 0x01

	absX           = 0x00
	absY           = 0x01
	absMTPositionX = 0x35
	absMTPositionY = 0x36

	btnLeft  = 0x110
	btnTouch = 0x14a
)

// Device is the live event-device handle. Reads block, so they run on
// a dedicated goroutine that feeds a bounded queue; Poll drains the
// queue without blocking the run loop.
type Device struct {
	file  *os.File
	queue *event.Queue
	done  chan struct{}

	mu      sync.Mutex
	readErr error

	reported bool
	closed   bool
}

// Open opens the input device at path and starts the reader.
func Open(path string) (*Device, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("evdev: open %s: %w", path, err)
	}
	d := &Device{
		file:  f,
		queue: event.NewQueue(256),
		done:  make(chan struct{}),
	}
	go d.read()
	return d, nil
}

// read decodes kernel input events into pointer/key events. Position
// state accumulates across records and is flushed as a pointer-move on
// each SYN_REPORT; button transitions are emitted immediately at the
// current position.
func (d *Device) read() {
	defer close(d.done)

	buf := make([]byte, eventSize*64)
	var x, y int
	moved := false

	for {
		n, err := d.file.Read(buf)
		if err != nil {
			d.mu.Lock()
			d.readErr = err
			d.mu.Unlock()
			return
		}
		for off := 0; off+eventSize <= n; off += eventSize {
			rec := (*inputEvent)(unsafe.Pointer(&buf[off]))
			switch rec.Type {
			case evAbs:
				switch rec.Code {
				case absX, absMTPositionX:
					x = int(rec.Value)
					moved = true
				case absY, absMTPositionY:
					y = int(rec.Value)
					moved = true
				}
			case evRel:
				switch rec.Code {
				case relX:
					x += int(rec.Value)
					moved = true
				case relY:
					y += int(rec.Value)
					moved = true
				}
			case evKey:
				kind := event.KeyDown
				if rec.Value == 0 {
					kind = event.KeyUp
				}
				if rec.Code == btnLeft || rec.Code == btnTouch {
					kind = event.PointerDown
					if rec.Value == 0 {
						kind = event.PointerUp
					}
				}
				d.queue.Push(event.Event{
					Kind: kind,
					Time: time.Now(),
					X:    x,
					Y:    y,
					Code: rec.Code,
				})
			case evSyn:
				if rec.Code == synReport && moved {
					d.queue.Push(event.Event{
						Kind: event.PointerMove,
						Time: time.Now(),
						X:    x,
						Y:    y,
					})
					moved = false
				}
			}
		}
	}
}

// Poll drains the queued events. A device read failure is reported
// once as a transient error; the backend produces nothing afterwards.
func (d *Device) Poll(dst []event.Event) ([]event.Event, error) {
	dst = d.queue.Drain(dst)

	select {
	case <-d.done:
		if d.closed || d.reported {
			return dst, nil
		}
		d.reported = true
		d.mu.Lock()
		err := d.readErr
		d.mu.Unlock()
		return dst, fmt.Errorf("evdev: device read: %w", err)
	default:
		return dst, nil
	}
}

// Close closes the device, which unblocks and stops the reader, and
// waits for it to exit.
func (d *Device) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	err := d.file.Close()
	<-d.done
	return err
}
