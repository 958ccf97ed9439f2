package booking

import (
	"context"
	"log"
	"sync"
	"time"
)

// ResetCycle deletes every reservation and waitlist entry belonging
// to the cycle that ends at the given cutover instant — the Monday
// through Friday span closing on that Friday — and nothing newer.
// State already created for the just-opened cycle survives untouched.
// It returns the removed row counts for observability.
func (e *Engine) ResetCycle(ctx context.Context, cutover time.Time) (reservations, waitlist int64, err error) {
	friday := e.rules.Day(cutover)
	monday := friday.AddDate(0, 0, -4)
	// Take the five date locks in order so no allocation for a dying
	// date can interleave with its deletion.
	unlocks := make([]func(), 0, 5)
	for d := monday; !d.After(friday); d = d.AddDate(0, 0, 1) {
		unlocks = append(unlocks, e.lockDate(d))
	}
	defer func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}()
	reservations, err = e.store.DeleteReservationRange(ctx, monday, friday)
	if err != nil {
		return 0, 0, err
	}
	waitlist, err = e.store.DeleteWaitlistRange(ctx, monday, friday)
	if err != nil {
		return reservations, 0, err
	}
	return reservations, waitlist, nil
}

// SweepStale removes reservations and waitlist entries dated before
// the currently active cycle.  Run at startup, it makes the engine
// correct even when the process slept through one or more cutovers:
// window state is recomputed from the wall clock, never assumed from
// a timer having fired.
func (e *Engine) SweepStale(ctx context.Context) (reservations, waitlist int64, err error) {
	monday, _ := e.rules.Cycle(e.clock.Now())
	reservations, err = e.store.DeleteReservationsBefore(ctx, monday)
	if err != nil {
		return 0, 0, err
	}
	waitlist, err = e.store.DeleteWaitlistBefore(ctx, monday)
	if err != nil {
		return reservations, 0, err
	}
	return reservations, waitlist, nil
}

// ResetScheduler fires the weekly cycle reset at each Friday cutover.
// The next fire time is always computed from the clock when arming,
// so a late or missed fire self-corrects on the next round.
type ResetScheduler struct {
	engine   *Engine
	newTimer TimerFactory

	mu      sync.Mutex
	timer   Timer
	stopped bool
}

// NewResetScheduler builds a scheduler bound to the engine's clock
// and rules.  Call Start to arm it.
func NewResetScheduler(e *Engine, newTimer TimerFactory) *ResetScheduler {
	if newTimer == nil {
		newTimer = StdTimers
	}
	return &ResetScheduler{engine: e, newTimer: newTimer}
}

// Start arms the timer for the next cutover.
func (s *ResetScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = false
	s.armLocked()
}

// Stop cancels the pending fire.  Idempotent.
func (s *ResetScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *ResetScheduler) armLocked() {
	now := s.engine.clock.Now()
	next := s.engine.rules.NextCutover(now)
	s.timer = s.newTimer(next.Sub(now), s.fire)
}

// fire runs one reset and re-arms for the following week.  The reset
// runs before any next-cycle allocation can touch the wiped dates:
// post-cutover requests target the new cycle, whose dates are out of
// the deleted range, and lottery buffers only resolve after the
// window closes.
func (s *ResetScheduler) fire() {
	now := s.engine.clock.Now()
	cutover := s.engine.rules.LastCutover(now)
	res, wl, err := s.engine.ResetCycle(context.Background(), cutover)
	if err != nil {
		log.Printf("reset: cycle ending %s failed: %v", cutover.Format("2006-01-02"), err)
	} else {
		log.Printf("reset: cycle ending %s cleared (%d reservations, %d waitlist entries)",
			cutover.Format("2006-01-02"), res, wl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.armLocked()
}
