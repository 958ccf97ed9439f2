package booking

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// fakeClock is a hand-advanced Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock { return &fakeClock{now: now} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// manualTimer is a Timer fired by the test instead of the runtime.
type manualTimer struct {
	d       time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.stopped = true
	return !t.fired
}

func (t *manualTimer) fire() {
	if t.stopped || t.fired {
		return
	}
	t.fired = true
	t.fn()
}

// manualTimers collects every timer the engine arms so tests can fire
// them deterministically.
type manualTimers struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (m *manualTimers) factory(d time.Duration, fn func()) Timer {
	t := &manualTimer{d: d, fn: fn}
	m.mu.Lock()
	m.timers = append(m.timers, t)
	m.mu.Unlock()
	return t
}

func (m *manualTimers) fireAll() {
	m.mu.Lock()
	pending := append([]*manualTimer(nil), m.timers...)
	m.timers = m.timers[:0]
	m.mu.Unlock()
	for _, t := range pending {
		t.fire()
	}
}

// recordNotifier captures notifications for assertions.
type recordNotifier struct {
	mu   sync.Mutex
	sent []Notification
}

func (n *recordNotifier) Notify(_ context.Context, msg Notification) error {
	n.mu.Lock()
	n.sent = append(n.sent, msg)
	n.mu.Unlock()
	return nil
}

func (n *recordNotifier) all() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.sent...)
}

// memStore is an in-memory Store enforcing the same uniqueness and
// position invariants as the MySQL implementation.
type memStore struct {
	mu           sync.Mutex
	flex         []string
	fixed        []string
	reservations map[string][]model.Reservation   // keyed by date
	waitlist     map[string][]model.WaitlistEntry // ordered, positions 1..N
	releases     []model.FixedSpotRelease
	nextID       uint64
}

func newMemStore(flex, fixed []string) *memStore {
	return &memStore{
		flex:         append([]string(nil), flex...),
		fixed:        append([]string(nil), fixed...),
		reservations: make(map[string][]model.Reservation),
		waitlist:     make(map[string][]model.WaitlistEntry),
	}
}

func dayKey(t time.Time) string { return t.Format("2006-01-02") }

func (s *memStore) id() uint64 { s.nextID++; return s.nextID }

func (s *memStore) FlexSpots(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.flex...), nil
}

func (s *memStore) FixedSpots(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.fixed...), nil
}

func (s *memStore) ReplaceFlexPool(_ context.Context, spots []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flex = append([]string(nil), spots...)
	return nil
}

func (s *memStore) ReplaceFixedPool(_ context.Context, spots []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixed = append([]string(nil), spots...)
	return nil
}

func (s *memStore) CreateReservation(_ context.Context, res *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := dayKey(res.Date)
	for _, r := range s.reservations[key] {
		if r.UserID == res.UserID {
			return ErrUserBooked
		}
		if r.Spot == res.Spot {
			return ErrSpotTaken
		}
	}
	res.ID = s.id()
	res.CreatedAt = time.Now()
	s.reservations[key] = append(s.reservations[key], *res)
	return nil
}

func (s *memStore) ReservationForUser(_ context.Context, userID uint64, date time.Time) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reservations[dayKey(date)] {
		if r.UserID == userID {
			cp := r
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) ReservationsByDate(_ context.Context, date time.Time) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Reservation(nil), s.reservations[dayKey(date)]...), nil
}

func (s *memStore) DeleteReservation(_ context.Context, userID uint64, date time.Time) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := dayKey(date)
	rows := s.reservations[key]
	for i, r := range rows {
		if r.UserID == userID {
			s.reservations[key] = append(rows[:i:i], rows[i+1:]...)
			cp := r
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) DeleteReservationRange(_ context.Context, from, to time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for key, rows := range s.reservations {
		d, _ := time.Parse("2006-01-02", key)
		if !d.Before(stripDay(from)) && !d.After(stripDay(to)) {
			n += int64(len(rows))
			delete(s.reservations, key)
		}
	}
	return n, nil
}

func (s *memStore) DeleteReservationsBefore(_ context.Context, day time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for key, rows := range s.reservations {
		d, _ := time.Parse("2006-01-02", key)
		if d.Before(stripDay(day)) {
			n += int64(len(rows))
			delete(s.reservations, key)
		}
	}
	return n, nil
}

func (s *memStore) WaitlistByDate(_ context.Context, date time.Time) ([]model.WaitlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.WaitlistEntry(nil), s.waitlist[dayKey(date)]...), nil
}

func (s *memStore) WaitlistEntryForUser(_ context.Context, userID uint64, date time.Time) (*model.WaitlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, en := range s.waitlist[dayKey(date)] {
		if en.UserID == userID {
			cp := en
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) AppendWaitlist(_ context.Context, entry *model.WaitlistEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := dayKey(entry.Date)
	entry.ID = s.id()
	entry.Position = len(s.waitlist[key]) + 1
	entry.CreatedAt = time.Now()
	s.waitlist[key] = append(s.waitlist[key], *entry)
	return nil
}

func (s *memStore) PeekWaitlistHead(_ context.Context, date time.Time) (*model.WaitlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.waitlist[dayKey(date)]
	if len(rows) == 0 {
		return nil, nil
	}
	cp := rows[0]
	return &cp, nil
}

func (s *memStore) PopWaitlistHead(_ context.Context, date time.Time) (*model.WaitlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := dayKey(date)
	rows := s.waitlist[key]
	if len(rows) == 0 {
		return nil, nil
	}
	head := rows[0]
	s.waitlist[key] = s.compact(rows[1:])
	return &head, nil
}

func (s *memStore) RemoveWaitlist(_ context.Context, userID uint64, date time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := dayKey(date)
	rows := s.waitlist[key]
	for i, en := range rows {
		if en.UserID == userID {
			s.waitlist[key] = s.compact(append(rows[:i:i], rows[i+1:]...))
			return true, nil
		}
	}
	return false, nil
}

// compact renumbers positions 1..N after a removal.
func (s *memStore) compact(rows []model.WaitlistEntry) []model.WaitlistEntry {
	for i := range rows {
		rows[i].Position = i + 1
	}
	return rows
}

func (s *memStore) DeleteWaitlistRange(_ context.Context, from, to time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for key, rows := range s.waitlist {
		d, _ := time.Parse("2006-01-02", key)
		if !d.Before(stripDay(from)) && !d.After(stripDay(to)) {
			n += int64(len(rows))
			delete(s.waitlist, key)
		}
	}
	return n, nil
}

func (s *memStore) DeleteWaitlistBefore(_ context.Context, day time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for key, rows := range s.waitlist {
		d, _ := time.Parse("2006-01-02", key)
		if d.Before(stripDay(day)) {
			n += int64(len(rows))
			delete(s.waitlist, key)
		}
	}
	return n, nil
}

func (s *memStore) CreateRelease(_ context.Context, rel *model.FixedSpotRelease) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rel.ID = s.id()
	rel.CreatedAt = time.Now()
	s.releases = append(s.releases, *rel)
	return nil
}

func (s *memStore) ReleasedFixedSpots(_ context.Context, date time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := stripDay(date)
	seen := make(map[string]struct{})
	var out []string
	for _, rel := range s.releases {
		if !containsSpot(s.fixed, rel.Spot) {
			continue
		}
		if d.Before(stripDay(rel.StartDate)) || d.After(stripDay(rel.EndDate)) {
			continue
		}
		if _, dup := seen[rel.Spot]; dup {
			continue
		}
		seen[rel.Spot] = struct{}{}
		out = append(out, rel.Spot)
	}
	return out, nil
}

func (s *memStore) WithdrawReleases(_ context.Context, spot string, from time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []model.FixedSpotRelease
	var n int64
	f := stripDay(from)
	for _, rel := range s.releases {
		if rel.Spot == spot && !stripDay(rel.EndDate).Before(f) {
			n++
			continue
		}
		kept = append(kept, rel)
	}
	s.releases = kept
	return n, nil
}

// stripDay normalizes to midnight UTC for comparisons independent of
// the location dates were built in.
func stripDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// testRig bundles an engine with all its fakes.
type testRig struct {
	engine   *Engine
	store    *memStore
	clock    *fakeClock
	timers   *manualTimers
	notifier *recordNotifier
	rules    Rules
}

func newTestRig(now time.Time, flex, fixed []string) *testRig {
	rules := Rules{Location: time.UTC, CutoverHour: 17, LotteryWindow: 15 * time.Minute}
	clock := newFakeClock(now)
	timers := &manualTimers{}
	notifier := &recordNotifier{}
	store := newMemStore(flex, fixed)
	engine := New(Config{
		Store:    store,
		Notifier: notifier,
		Rules:    rules,
		Clock:    clock,
		Timers:   timers.factory,
		Seed:     1,
	})
	return &testRig{engine: engine, store: store, clock: clock, timers: timers, notifier: notifier, rules: rules}
}

// date builds a midnight-UTC date for tests.
func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// at builds an instant on a date.
func at(y int, m time.Month, d, hour, min int) time.Time {
	return time.Date(y, m, d, hour, min, 0, 0, time.UTC)
}
