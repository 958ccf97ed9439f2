package booking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// windowOpen is Friday 2026-08-28 17:05 UTC, five minutes into the
// fairness window; newMonday is the first day of the just-opened cycle.
var (
	windowOpen = at(2026, time.August, 28, 17, 5)
	newMonday  = date(2026, time.August, 31)
)

func TestWindowRequestsAreBuffered(t *testing.T) {
	rig := newTestRig(windowOpen, []string{"1", "2"}, nil)
	ctx := context.Background()

	out, err := rig.engine.RequestReservation(ctx, 1, "alice", newMonday)
	require.NoError(t, err)
	assert.Equal(t, OutcomeQueued, out.Kind)
	assert.Equal(t, 1, out.Position)

	out, err = rig.engine.RequestReservation(ctx, 2, "bob", newMonday)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Position)

	// Nothing is allocated while the window is open.
	rows, err := rig.store.ReservationsByDate(ctx, newMonday)
	require.NoError(t, err)
	assert.Empty(t, rows)

	// A duplicate submission reports the existing buffer position.
	out, err = rig.engine.RequestReservation(ctx, 1, "alice", newMonday)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, out.Kind)
	assert.Equal(t, ReasonAlreadyQueued, out.Reason)
	assert.Equal(t, 1, out.Position)
}

func TestLotteryResolution(t *testing.T) {
	rig := newTestRig(windowOpen, []string{"1"}, nil)
	ctx := context.Background()

	_, err := rig.engine.RequestReservation(ctx, 1, "alice", newMonday)
	require.NoError(t, err)
	_, err = rig.engine.RequestReservation(ctx, 2, "bob", newMonday)
	require.NoError(t, err)

	// The window closes: the buffered bucket resolves in shuffled order.
	rig.clock.Set(at(2026, time.August, 28, 17, 20))
	rig.timers.fireAll()

	rows, err := rig.store.ReservationsByDate(ctx, newMonday)
	require.NoError(t, err)
	require.Len(t, rows, 1, "one spot, one winner")
	entries, err := rig.store.WaitlistByDate(ctx, newMonday)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Position)
	assert.NotEqual(t, rows[0].UserID, entries[0].UserID)

	// Every participant hears exactly once.
	sent := rig.notifier.all()
	require.Len(t, sent, 2)
	kinds := map[OutcomeKind]int{}
	users := map[uint64]int{}
	for _, n := range sent {
		kinds[n.Outcome.Kind]++
		users[n.UserID]++
	}
	assert.Equal(t, 1, kinds[OutcomeConfirmed])
	assert.Equal(t, 1, kinds[OutcomeWaitlisted])
	assert.Equal(t, 1, users[1])
	assert.Equal(t, 1, users[2])
}

func TestLotteryBucketsArePerDate(t *testing.T) {
	rig := newTestRig(windowOpen, []string{"1"}, nil)
	ctx := context.Background()

	_, err := rig.engine.RequestReservation(ctx, 1, "alice", newMonday)
	require.NoError(t, err)
	out, err := rig.engine.RequestReservation(ctx, 1, "alice", date(2026, time.September, 1))
	require.NoError(t, err)
	assert.Equal(t, OutcomeQueued, out.Kind)
	assert.Equal(t, 1, out.Position, "positions are counted per date")

	rig.timers.fireAll()

	mon, err := rig.store.ReservationsByDate(ctx, newMonday)
	require.NoError(t, err)
	tue, err := rig.store.ReservationsByDate(ctx, date(2026, time.September, 1))
	require.NoError(t, err)
	assert.Len(t, mon, 1)
	assert.Len(t, tue, 1)
}

func TestFlushResolvesPendingBuffers(t *testing.T) {
	rig := newTestRig(windowOpen, []string{"1"}, nil)
	ctx := context.Background()

	_, err := rig.engine.RequestReservation(ctx, 1, "alice", newMonday)
	require.NoError(t, err)

	rig.engine.Lottery().Flush()

	rows, err := rig.store.ReservationsByDate(ctx, newMonday)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, uint64(1), rows[0].UserID)

	// The stopped timer firing later must not resolve twice.
	rig.timers.fireAll()
	rows, err = rig.store.ReservationsByDate(ctx, newMonday)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Len(t, rig.notifier.all(), 1)
}

func TestRequestsAfterWindowAllocateDirectly(t *testing.T) {
	rig := newTestRig(at(2026, time.August, 28, 17, 20), []string{"1"}, nil)

	out, err := rig.engine.RequestReservation(context.Background(), 1, "alice", newMonday)
	require.NoError(t, err)
	assert.Equal(t, OutcomeConfirmed, out.Kind)
	assert.Equal(t, "1", out.Spot)
}

func TestLotterySeedVariesWinnersNotCounts(t *testing.T) {
	ctx := context.Background()
	winners := make(map[uint64]struct{})

	for seed := int64(1); seed <= 12; seed++ {
		store := newMemStore([]string{"1"}, nil)
		clock := newFakeClock(windowOpen)
		timers := &manualTimers{}
		engine := New(Config{
			Store:  store,
			Rules:  Rules{Location: time.UTC, CutoverHour: 17, LotteryWindow: 15 * time.Minute},
			Clock:  clock,
			Timers: timers.factory,
			Seed:   seed,
		})

		for _, u := range []uint64{1, 2, 3} {
			_, err := engine.RequestReservation(ctx, u, fmt.Sprintf("user-%d", u), newMonday)
			require.NoError(t, err)
		}
		clock.Set(at(2026, time.August, 28, 17, 20))
		timers.fireAll()

		// The seed decides who wins, never how many win.
		rows, err := store.ReservationsByDate(ctx, newMonday)
		require.NoError(t, err)
		require.Len(t, rows, 1, "seed %d", seed)
		wl, err := store.WaitlistByDate(ctx, newMonday)
		require.NoError(t, err)
		require.Len(t, wl, 2, "seed %d", seed)
		winners[rows[0].UserID] = struct{}{}
	}

	assert.Greater(t, len(winners), 1, "different seeds draw different winners")
}

func TestWindowBucketsKeyByCalendarDay(t *testing.T) {
	rig := newTestRig(windowOpen, []string{"1"}, nil)
	ctx := context.Background()

	out, err := rig.engine.RequestReservation(ctx, 1, "alice", newMonday)
	require.NoError(t, err)
	assert.Equal(t, OutcomeQueued, out.Kind)

	// The same calendar day carrying a time-of-day component lands in
	// the same bucket as its midnight form.
	out, err = rig.engine.RequestReservation(ctx, 1, "alice", newMonday.Add(9*time.Hour+30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, out.Kind)
	assert.Equal(t, ReasonAlreadyQueued, out.Reason)

	// One bucket, one resolution timer.
	rig.timers.mu.Lock()
	armed := len(rig.timers.timers)
	rig.timers.mu.Unlock()
	assert.Equal(t, 1, armed)
}
