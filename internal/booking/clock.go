// Package booking implements the time-windowed reservation and waitlist
// allocation engine: the booking window validator, the spot allocator,
// the per-date waitlist, the lottery queue scheduler that absorbs the
// post-cutover rush, the fixed-spot release overlay and the weekly cycle
// reset.  Storage and notification are collaborators behind interfaces;
// time is injected so the whole engine can be driven deterministically
// in tests.
package booking

import "time"

// Clock supplies the current instant.  Decision logic never calls
// time.Now directly; it always goes through the engine's clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock { return systemClock{} }

// Timer is a cancellable deferred call.  Stop reports whether the call
// was prevented from running; stopping an already-fired timer is a
// harmless no-op.
type Timer interface {
	Stop() bool
}

// TimerFactory schedules fn to run once after d.  Production code uses
// StdTimers; tests substitute a factory that captures fn and fires it
// by hand.
type TimerFactory func(d time.Duration, fn func()) Timer

type realTimer struct{ t *time.Timer }

func (r realTimer) Stop() bool { return r.t.Stop() }

// StdTimers is the TimerFactory backed by time.AfterFunc.
func StdTimers(d time.Duration, fn func()) Timer {
	return realTimer{t: time.AfterFunc(d, fn)}
}
