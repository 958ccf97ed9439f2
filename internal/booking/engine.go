package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// Engine is the facade exposed to the intent/command layer.  It owns
// the per-date critical sections that serialize every mutating
// operation touching the same date; different dates proceed fully in
// parallel.  The engine assumes a single active process instance —
// upgrading the per-date mutex to a distributed lock would be
// required before running more than one.
type Engine struct {
	store    Store
	notifier Notifier
	rules    Rules
	clock    Clock
	lottery  *Lottery

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Config collects the engine's collaborators.  Store and Rules are
// required; a nil Clock defaults to the system clock, a nil Timers
// factory to time.AfterFunc, a zero Seed to a time-derived one, and a
// nil Notifier disables outbound messages.
type Config struct {
	Store    Store
	Notifier Notifier
	Rules    Rules
	Clock    Clock
	Timers   TimerFactory
	Seed     int64
}

// New constructs an Engine and its lottery scheduler.
func New(cfg Config) *Engine {
	if cfg.Store == nil {
		panic("nil store passed to booking.New")
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}
	if cfg.Timers == nil {
		cfg.Timers = StdTimers
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	e := &Engine{
		store:    cfg.Store,
		notifier: cfg.Notifier,
		rules:    cfg.Rules,
		clock:    cfg.Clock,
		locks:    make(map[string]*sync.Mutex),
	}
	// Buckets key through the same DateKey as the per-date lock map,
	// so a buffer and its resolution critical section always agree on
	// which calendar day they cover.
	e.lottery = newLottery(cfg.Timers, cfg.Seed, e.rules.DateKey, e.resolveLottery)
	return e
}

// Rules exposes the engine's booking rules (read-only).
func (e *Engine) Rules() Rules { return e.rules }

// lockDate enters the critical section for a date and returns the
// matching unlock.  Lock values are never removed from the map; the
// working set is at most two weeks of dates.
func (e *Engine) lockDate(date time.Time) func() {
	key := e.rules.DateKey(date)
	e.mu.Lock()
	l, ok := e.locks[key]
	if !ok {
		l = &sync.Mutex{}
		e.locks[key] = l
	}
	e.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// RequestReservation processes a booking request for the given user
// and date.  The returned Outcome is Confirmed, Queued (buffered for
// the lottery), Waitlisted or Rejected; the error is non-nil only for
// infrastructure failures.
func (e *Engine) RequestReservation(ctx context.Context, userID uint64, displayName string, date time.Time) (Outcome, error) {
	now := e.clock.Now()
	date = e.rules.Day(date)
	if reason := e.rules.Validate(now, date); reason != ReasonNone {
		return Rejected(reason), nil
	}
	if e.rules.InFairnessWindow(now) {
		// The fairness window is open, so this request targets the
		// just-opened cycle: buffer it for the lottery draw instead of
		// allocating in arrival order.
		pos, dup := e.lottery.Enqueue(now, userID, displayName, date, e.rules.WindowCloseIn(now))
		if dup {
			return RejectedAt(ReasonAlreadyQueued, pos), nil
		}
		return Queued(pos), nil
	}
	unlock := e.lockDate(date)
	defer unlock()
	return e.allocateOrWaitlist(ctx, userID, displayName, date)
}

// allocateOrWaitlist tries the allocator and falls back to the
// waitlist on exhaustion.  Callers must hold the date lock.
func (e *Engine) allocateOrWaitlist(ctx context.Context, userID uint64, displayName string, date time.Time) (Outcome, error) {
	spot, err := e.allocate(ctx, userID, displayName, date)
	switch {
	case err == nil:
		return Confirmed(spot), nil
	case errors.Is(err, ErrUserBooked):
		return Rejected(ReasonDuplicateBooking), nil
	case errors.Is(err, ErrNoSpotAvailable):
		return e.enqueueWaitlist(ctx, userID, displayName, date)
	default:
		return Outcome{}, err
	}
}

// ReleaseReservation gives up the user's reservation for a date and
// hands the freed spot to the head of the waitlist, if any.
func (e *Engine) ReleaseReservation(ctx context.Context, userID uint64, date time.Time) (Outcome, error) {
	date = e.rules.Day(date)
	unlock := e.lockDate(date)
	defer unlock()
	res, err := e.store.DeleteReservation(ctx, userID, date)
	if err != nil {
		return Outcome{}, err
	}
	if res == nil {
		return Rejected(ReasonNoActiveReservation), nil
	}
	if err := e.promoteWaitlistHead(ctx, date); err != nil {
		// The release itself succeeded; promotion failures surface in
		// logs and the head entry stays queued for the next release.
		log.Printf("engine: waitlist promotion for %s failed: %v", e.rules.DateKey(date), err)
	}
	return Released(res.Spot), nil
}

// ReleaseFixedSpot records a temporary opt-out of a fixed spot for
// [start, end], folding it into the shared inventory for those dates.
// It displaces nothing: existing reservations are untouched.
func (e *Engine) ReleaseFixedSpot(ctx context.Context, spot string, start, end time.Time) (Outcome, error) {
	start, end = e.rules.Day(start), e.rules.Day(end)
	if end.Before(start) || end.Before(e.rules.Day(e.clock.Now())) {
		return Rejected(ReasonOutOfRange), nil
	}
	fixed, err := e.store.FixedSpots(ctx)
	if err != nil {
		return Outcome{}, err
	}
	if !containsSpot(fixed, spot) {
		return Rejected(ReasonNotFixedSpot), nil
	}
	rel := &model.FixedSpotRelease{Spot: spot, StartDate: start, EndDate: end}
	if err := e.store.CreateRelease(ctx, rel); err != nil {
		return Outcome{}, err
	}
	return Outcome{Kind: OutcomeOK}, nil
}

// WithdrawFixedSpotRelease removes future and ongoing release rows
// for a fixed spot and returns how many were removed.  Past releases
// stay behind as history.
func (e *Engine) WithdrawFixedSpotRelease(ctx context.Context, spot string) (int64, error) {
	today := e.rules.Day(e.clock.Now())
	return e.store.WithdrawReleases(ctx, spot, today)
}

// ReplaceFlexPool swaps the flex pool wholesale.  Reservations made
// against the old pool are deliberately left alone; replacing the
// pool must not silently delete user state.
func (e *Engine) ReplaceFlexPool(ctx context.Context, spots []string) error {
	cleaned, err := e.cleanPool(ctx, spots, e.store.FixedSpots)
	if err != nil {
		return err
	}
	return e.store.ReplaceFlexPool(ctx, cleaned)
}

// ReplaceFixedPool swaps the fixed pool wholesale.
func (e *Engine) ReplaceFixedPool(ctx context.Context, spots []string) error {
	cleaned, err := e.cleanPool(ctx, spots, e.store.FlexSpots)
	if err != nil {
		return err
	}
	return e.store.ReplaceFixedPool(ctx, cleaned)
}

// cleanPool deduplicates and validates a replacement pool, rejecting
// identifiers already present in the opposite pool.
func (e *Engine) cleanPool(ctx context.Context, spots []string, other func(context.Context) ([]string, error)) ([]string, error) {
	taken, err := other(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(spots))
	cleaned := make([]string, 0, len(spots))
	for _, s := range spots {
		if s == "" {
			return nil, fmt.Errorf("empty spot identifier")
		}
		if containsSpot(taken, s) {
			return nil, fmt.Errorf("spot %q already belongs to the other pool", s)
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		cleaned = append(cleaned, s)
	}
	sortSpots(cleaned)
	return cleaned, nil
}

// Lottery exposes the lottery scheduler, mainly so main can flush
// pending buffers on shutdown.
func (e *Engine) Lottery() *Lottery { return e.lottery }

func containsSpot(ids []string, spot string) bool {
	for _, s := range ids {
		if s == spot {
			return true
		}
	}
	return false
}

// notify hands an outcome to the notification collaborator after the
// corresponding row is durably recorded.  A delivery failure is
// logged and dropped; it never unwinds the allocation.
func (e *Engine) notify(userID uint64, displayName string, date time.Time, out Outcome) {
	if e.notifier == nil {
		return
	}
	n := Notification{
		UserID:      userID,
		DisplayName: displayName,
		Date:        date,
		Outcome:     out,
		Text:        outcomeText(out, date),
	}
	if err := e.notifier.Notify(context.Background(), n); err != nil {
		log.Printf("engine: notify user %d failed: %v", userID, err)
	}
}

// outcomeText renders the human-readable message sent to a user.
func outcomeText(out Outcome, date time.Time) string {
	day := date.Format("Mon 02 Jan")
	switch out.Kind {
	case OutcomeConfirmed:
		return fmt.Sprintf("Spot %s is yours for %s.", out.Spot, day)
	case OutcomeWaitlisted:
		return fmt.Sprintf("All spots for %s are taken; you are #%d on the waitlist.", day, out.Position)
	case OutcomeRejected:
		if out.Reason == ReasonDuplicateBooking {
			return fmt.Sprintf("You already have a spot for %s.", day)
		}
		return fmt.Sprintf("Your request for %s was rejected (%s).", day, out.Reason)
	default:
		return fmt.Sprintf("Update for %s: %s.", day, out.Kind)
	}
}
