package booking

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// ErrSpotTaken is returned by Store.CreateReservation when the
// (date, spot) pair is already reserved.  The unique key at the
// storage layer is the last line of defense against two callers
// picking the same spot; the allocator reacts by retrying the next
// candidate.
var ErrSpotTaken = errors.New("spot already reserved for this date")

// ErrUserBooked is returned by Store.CreateReservation when the user
// already holds a reservation for the date.
var ErrUserBooked = errors.New("user already has a reservation for this date")

// ErrNoSpotAvailable is returned by the allocator when both the flex
// pool and the released fixed spots are exhausted for a date.  It is
// an expected outcome: callers route it to the waitlist.
var ErrNoSpotAvailable = errors.New("no spot available")

// Store is the persistence collaborator.  Implementations must
// enforce the (user, date) and (date, spot) uniqueness invariants and
// keep waitlist positions contiguous per date.  The production
// implementation lives in internal/repository; tests use an in-memory
// fake.
type Store interface {
	// FlexSpots returns the identifiers of the active flex pool.
	FlexSpots(ctx context.Context) ([]string, error)
	// FixedSpots returns the identifiers of the active fixed pool.
	FixedSpots(ctx context.Context) ([]string, error)
	// ReplaceFlexPool swaps the flex pool wholesale.  Existing
	// reservations are left untouched.
	ReplaceFlexPool(ctx context.Context, spots []string) error
	// ReplaceFixedPool swaps the fixed pool wholesale.
	ReplaceFixedPool(ctx context.Context, spots []string) error

	// CreateReservation inserts a reservation, returning ErrSpotTaken
	// or ErrUserBooked on the respective unique-key violations.
	CreateReservation(ctx context.Context, res *model.Reservation) error
	// ReservationForUser returns the user's reservation for the date,
	// or nil when none exists.
	ReservationForUser(ctx context.Context, userID uint64, date time.Time) (*model.Reservation, error)
	// ReservationsByDate lists all reservations for a date.
	ReservationsByDate(ctx context.Context, date time.Time) ([]model.Reservation, error)
	// DeleteReservation removes the user's reservation for the date
	// and returns the removed row, or nil when there was none.
	DeleteReservation(ctx context.Context, userID uint64, date time.Time) (*model.Reservation, error)
	// DeleteReservationRange bulk-deletes reservations with
	// from <= date <= to and returns the number removed.
	DeleteReservationRange(ctx context.Context, from, to time.Time) (int64, error)
	// DeleteReservationsBefore removes reservations dated strictly
	// before the given day.
	DeleteReservationsBefore(ctx context.Context, day time.Time) (int64, error)

	// WaitlistByDate lists a date's waitlist ordered by position.
	WaitlistByDate(ctx context.Context, date time.Time) ([]model.WaitlistEntry, error)
	// WaitlistEntryForUser returns the user's entry for the date, or
	// nil when the user is not queued.
	WaitlistEntryForUser(ctx context.Context, userID uint64, date time.Time) (*model.WaitlistEntry, error)
	// AppendWaitlist adds the user at the tail of the date's queue
	// and fills in the assigned position.
	AppendWaitlist(ctx context.Context, entry *model.WaitlistEntry) error
	// PeekWaitlistHead returns the position-1 entry without mutating,
	// or nil when the queue is empty.
	PeekWaitlistHead(ctx context.Context, date time.Time) (*model.WaitlistEntry, error)
	// PopWaitlistHead removes the position-1 entry and shifts every
	// remaining entry up by one, preserving contiguity.
	PopWaitlistHead(ctx context.Context, date time.Time) (*model.WaitlistEntry, error)
	// RemoveWaitlist removes the user's entry (any position) with the
	// same compaction rule; it reports whether an entry was removed.
	RemoveWaitlist(ctx context.Context, userID uint64, date time.Time) (bool, error)
	// DeleteWaitlistRange bulk-deletes waitlist entries with
	// from <= date <= to and returns the number removed.
	DeleteWaitlistRange(ctx context.Context, from, to time.Time) (int64, error)
	// DeleteWaitlistBefore removes entries dated strictly before day.
	DeleteWaitlistBefore(ctx context.Context, day time.Time) (int64, error)

	// CreateRelease records a fixed-spot release interval.
	CreateRelease(ctx context.Context, rel *model.FixedSpotRelease) error
	// ReleasedFixedSpots returns the fixed spots released for the
	// given date (start <= date <= end on some release row).
	ReleasedFixedSpots(ctx context.Context, date time.Time) ([]string, error)
	// WithdrawReleases deletes release rows for the spot whose end
	// date is on or after from, returning the number removed.  Past
	// releases are left as history.
	WithdrawReleases(ctx context.Context, spot string, from time.Time) (int64, error)
}

// Notification is the payload handed to the notification
// collaborator after an asynchronous outcome (lottery resolution or
// waitlist promotion) has been durably recorded.
type Notification struct {
	UserID      uint64    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Date        time.Time `json:"date"`
	Outcome     Outcome   `json:"outcome"`
	Text        string    `json:"text"`
}

// Notifier delivers an outcome message to a user.  Delivery is
// fire-and-forget with respect to engine state: failures are reported
// but never roll back an allocation, and the engine does not retry.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
