package event

import "sync/atomic"

// Queue is a bounded, thread-safe event queue. A backend that must
// block on device I/O runs a reader goroutine that pushes into the
// queue; the run loop drains it without blocking. When the queue is
// full, Push drops the event and counts the drop instead of blocking
// the producer.
type Queue struct {
	ch      chan Event
	dropped atomic.Uint64
}

// NewQueue returns a queue holding at most capacity events.
// A capacity below 1 is raised to 1.
func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{ch: make(chan Event, capacity)}
}

// Push enqueues ev without blocking. It reports whether the event was
// accepted; false means the queue was full and the event was dropped.
func (q *Queue) Push(ev Event) bool {
	select {
	case q.ch <- ev:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// Drain appends all currently queued events to dst and returns the
// extended slice. It never blocks.
func (q *Queue) Drain(dst []Event) []Event {
	for {
		select {
		case ev := <-q.ch:
			dst = append(dst, ev)
		default:
			return dst
		}
	}
}

// Dropped returns the number of events dropped by Push since the
// queue was created.
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}
