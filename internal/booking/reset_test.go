package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedWeek(t *testing.T, rig *testRig) {
	t.Helper()
	ctx := context.Background()
	// Old cycle: reservations Wednesday and Friday, one waitlisted user.
	_, err := rig.engine.RequestReservation(ctx, 1, "alice", date(2026, time.August, 26))
	require.NoError(t, err)
	_, err = rig.engine.RequestReservation(ctx, 2, "bob", date(2026, time.August, 26))
	require.NoError(t, err) // waitlisted, pool of one
	_, err = rig.engine.RequestReservation(ctx, 1, "alice", date(2026, time.August, 28))
	require.NoError(t, err)
}

func TestResetCycleClearsOnlyEndedWeek(t *testing.T) {
	rig := newTestRig(midweek, []string{"1"}, nil)
	ctx := context.Background()
	seedWeek(t, rig)

	// After the cutover a booking lands in the new cycle.
	rig.clock.Set(at(2026, time.August, 28, 17, 20))
	out, err := rig.engine.RequestReservation(ctx, 3, "carol", date(2026, time.August, 31))
	require.NoError(t, err)
	require.Equal(t, OutcomeConfirmed, out.Kind)

	res, wl, err := rig.engine.ResetCycle(ctx, at(2026, time.August, 28, 17, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(2), res)
	assert.Equal(t, int64(1), wl)

	// New-cycle state survives.
	kept, err := rig.store.ReservationForUser(ctx, 3, date(2026, time.August, 31))
	require.NoError(t, err)
	assert.NotNil(t, kept)
	gone, err := rig.store.ReservationForUser(ctx, 1, date(2026, time.August, 26))
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestSweepStaleAfterDowntime(t *testing.T) {
	rig := newTestRig(midweek, []string{"1"}, nil)
	ctx := context.Background()
	seedWeek(t, rig)

	// The process wakes up the following Monday having missed the
	// Friday cutover entirely.
	rig.clock.Set(at(2026, time.August, 31, 8, 0))
	res, wl, err := rig.engine.SweepStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res)
	assert.Equal(t, int64(1), wl)

	rows, err := rig.store.ReservationsByDate(ctx, date(2026, time.August, 26))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestResetSchedulerFiresAtCutover(t *testing.T) {
	rig := newTestRig(midweek, []string{"1"}, nil)
	ctx := context.Background()
	seedWeek(t, rig)

	s := NewResetScheduler(rig.engine, rig.timers.factory)
	s.Start()
	defer s.Stop()

	rig.timers.mu.Lock()
	require.Len(t, rig.timers.timers, 1)
	armed := rig.timers.timers[0].d
	rig.timers.mu.Unlock()
	// Wednesday 10:00 to Friday 17:00.
	assert.Equal(t, 55*time.Hour, armed)

	rig.clock.Set(at(2026, time.August, 28, 17, 0))
	rig.timers.fireAll()

	rows, err := rig.store.ReservationsByDate(ctx, date(2026, time.August, 26))
	require.NoError(t, err)
	assert.Empty(t, rows)

	// The scheduler re-armed itself for the following Friday.
	rig.timers.mu.Lock()
	rearmed := len(rig.timers.timers)
	next := rig.timers.timers[0].d
	rig.timers.mu.Unlock()
	assert.Equal(t, 1, rearmed)
	assert.Equal(t, 7*24*time.Hour, next)
}

func TestResetSchedulerStop(t *testing.T) {
	rig := newTestRig(midweek, []string{"1"}, nil)

	s := NewResetScheduler(rig.engine, rig.timers.factory)
	s.Start()
	s.Stop()

	rig.timers.fireAll()
	rig.timers.mu.Lock()
	defer rig.timers.mu.Unlock()
	assert.Empty(t, rig.timers.timers, "stopped scheduler must not re-arm")
}
