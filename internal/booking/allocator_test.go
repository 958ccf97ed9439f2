package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

func TestSpotOrdering(t *testing.T) {
	ids := []string{"10", "2", "B1", "A1", "9", "1"}
	sortSpots(ids)
	assert.Equal(t, []string{"1", "2", "9", "10", "A1", "B1"}, ids)
}

func TestSpotLess(t *testing.T) {
	assert.True(t, spotLess("9", "10"), "numeric identifiers compare numerically")
	assert.True(t, spotLess("3", "A1"), "numeric sorts before non-numeric")
	assert.False(t, spotLess("A1", "3"))
	assert.True(t, spotLess("A1", "B1"))
}

// raceStore reports the first insert for one spot as lost to a
// concurrent writer, the way the MySQL unique key on (date, spot)
// would when another caller slipped in between the availability read
// and the insert.
type raceStore struct {
	*memStore
	spot  string
	spent bool
}

func (s *raceStore) CreateReservation(ctx context.Context, res *model.Reservation) error {
	if !s.spent && res.Spot == s.spot {
		s.spent = true
		return ErrSpotTaken
	}
	return s.memStore.CreateReservation(ctx, res)
}

func TestAllocateRetriesLostSpotRace(t *testing.T) {
	store := &raceStore{memStore: newMemStore([]string{"1", "2"}, nil), spot: "1"}
	engine := New(Config{
		Store:  store,
		Rules:  Rules{Location: time.UTC, CutoverHour: 17, LotteryWindow: 15 * time.Minute},
		Clock:  newFakeClock(midweek),
		Timers: (&manualTimers{}).factory,
		Seed:   1,
	})

	// Losing the unique-key race on "1" must fall through to "2",
	// never fail the request.
	out, err := engine.RequestReservation(context.Background(), 1, "alice", target)
	require.NoError(t, err)
	assert.Equal(t, OutcomeConfirmed, out.Kind)
	assert.Equal(t, "2", out.Spot)
	assert.True(t, store.spent, "the conflicting insert was attempted first")
}

func TestConcurrentRequestsLastSpot(t *testing.T) {
	rig := newTestRig(midweek, []string{"1"}, nil)
	ctx := context.Background()

	const callers = 8
	outcomes := make([]Outcome, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i], errs[i] = rig.engine.RequestReservation(ctx, uint64(i+1), fmt.Sprintf("user-%d", i+1), target)
		}(i)
	}
	wg.Wait()

	confirmed := 0
	for i, out := range outcomes {
		require.NoError(t, errs[i])
		switch out.Kind {
		case OutcomeConfirmed:
			confirmed++
			assert.Equal(t, "1", out.Spot)
		case OutcomeWaitlisted:
		default:
			t.Fatalf("caller %d got unexpected outcome %s", i+1, out.Kind)
		}
	}
	assert.Equal(t, 1, confirmed, "exactly one caller wins the last spot")

	wl, err := rig.store.WaitlistByDate(ctx, target)
	require.NoError(t, err)
	require.Len(t, wl, callers-1)
	for i, en := range wl {
		assert.Equal(t, i+1, en.Position, "waitlist positions stay contiguous")
	}
}
