package sim

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/gogpu/gg"

	"github.com/gogpu/ggsim/backend"
	"github.com/gogpu/ggsim/event"
)

// Scene is the narrow slice of the toolkit the run loop drives each
// frame. Advance moves timers and animations by the elapsed
// wall-clock delta, Input dispatches one event, and Render draws into
// the frame pixmap, reporting the dirty region and whether anything
// changed at all.
type Scene interface {
	Advance(dt time.Duration)
	Input(ev event.Event)
	Render(frame *gg.Pixmap) (dirty image.Rectangle, changed bool)
}

// Run drives the steady-cadence frame loop until a quit signal, ctx
// cancellation, or a fatal surface error, then tears down every active
// handle exactly once and returns. A fatal surface error is returned
// after teardown; a quit signal or ctx cancellation returns nil.
//
// Each iteration advances the scene by the elapsed wall-clock delta,
// drains pending events from every active handle (primary display
// first, then layered inputs), renders, presents when the frame
// changed, and sleeps the remainder of the frame interval. The sleep
// is interruptible by a pending quit, and the loop never blocks
// indefinitely on backend I/O: Poll is non-blocking by contract.
//
// A transient event-pump error is logged and skipped; an error
// wrapping [backend.ErrSurfaceLost] from Poll or Present forces the
// transition to Stopping.
func (s *Simulator) Run(ctx context.Context, scene Scene) error {
	if scene == nil {
		return errors.New("sim: nil scene")
	}
	if s.display == nil {
		return ErrNotInitialized
	}
	if !s.state.CompareAndSwap(int32(Idle), int32(Running)) {
		return ErrNotIdle
	}
	defer func() {
		s.state.Store(int32(Stopping))
		s.teardown()
		s.state.Store(int32(Terminated))
		s.log.Info().Msg("run loop terminated")
	}()

	w, h := s.display.Size()
	frame := gg.NewPixmap(w, h)
	bounds := image.Rect(0, 0, w, h)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()
	if !timer.Stop() {
		<-timer.C
	}

	s.log.Info().Str("backend", s.displayName).Dur("interval", s.interval).Msg("run loop started")

	// The handle set is fixed for the duration of the loop, and buf is
	// recycled across frames once a backend has grown it.
	handles := make([]activeHandle, 0, 1+len(s.inputs))
	handles = append(handles, activeHandle{name: s.displayName, handle: s.display})
	handles = append(handles, s.inputs...)

	var (
		buf    []event.Event
		last   = time.Now()
		runErr error
	)
	for {
		// Quit requests are observed at the top of each iteration.
		select {
		case <-ctx.Done():
			return runErr
		case <-s.quit:
			return runErr
		default:
		}

		now := time.Now()
		scene.Advance(now.Sub(last))
		last = now

		var quit bool
		buf, quit, runErr = s.pump(scene, handles, buf)
		if runErr != nil {
			return runErr
		}
		if quit {
			return nil
		}

		if dirty, changed := scene.Render(frame); changed {
			if dirty.Empty() {
				dirty = bounds
			}
			dirty = dirty.Intersect(bounds)
			if err := s.display.Present(frame, dirty); err != nil {
				if errors.Is(err, backend.ErrSurfaceLost) {
					s.log.Error().Err(err).Str("backend", s.displayName).Msg("surface lost during present")
					runErr = err
					return runErr
				}
				s.log.Warn().Err(err).Str("backend", s.displayName).Msg("present failed, skipping frame")
			}
		}

		// Sleep out the rest of the frame interval, but wake early for
		// a quit request. When a frame overruns there is nothing to
		// sleep, and the quit check at the loop top still runs.
		remaining := s.interval - time.Since(now)
		if remaining <= 0 {
			continue
		}
		timer.Reset(remaining)
		select {
		case <-ctx.Done():
			return runErr
		case <-s.quit:
			return runErr
		case <-timer.C:
		}
	}
}

// pump drains pending events from every active handle and dispatches
// them to the scene. It reports whether a quit event was seen and
// returns buf, possibly regrown, for the next frame. The returned
// error, if any, is fatal; transient pump errors are logged and
// swallowed here.
func (s *Simulator) pump(scene Scene, handles []activeHandle, buf []event.Event) (_ []event.Event, quit bool, err error) {
	for _, ah := range handles {
		evs, perr := ah.handle.Poll(buf[:0])
		if cap(evs) > cap(buf) {
			buf = evs
		}
		if perr != nil {
			if errors.Is(perr, backend.ErrSurfaceLost) {
				s.log.Error().Err(perr).Str("backend", ah.name).Msg("surface lost during event pump")
				return buf, false, perr
			}
			// Transient: a malformed event or a short device hiccup
			// must not take the loop down.
			s.log.Warn().Err(perr).Str("backend", ah.name).Msg("event pump error, skipping")
		}
		for _, ev := range evs {
			if ev.Kind == event.Quit {
				s.log.Info().Str("backend", ah.name).Msg("quit requested")
				quit = true
				continue
			}
			scene.Input(ev)
		}
		if quit {
			return buf, true, nil
		}
	}
	return buf, false, nil
}
