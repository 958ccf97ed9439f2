package booking

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// enqueueWaitlist appends the user to the date's queue after the
// allocator reported exhaustion.  A user who already holds a
// reservation for the date may not also occupy a queue slot; that
// invariant is checked here rather than assumed.  Callers must hold
// the date lock.
func (e *Engine) enqueueWaitlist(ctx context.Context, userID uint64, displayName string, date time.Time) (Outcome, error) {
	if res, err := e.store.ReservationForUser(ctx, userID, date); err != nil {
		return Outcome{}, err
	} else if res != nil {
		return Rejected(ReasonDuplicateBooking), nil
	}
	if existing, err := e.store.WaitlistEntryForUser(ctx, userID, date); err != nil {
		return Outcome{}, err
	} else if existing != nil {
		return RejectedAt(ReasonAlreadyQueued, existing.Position), nil
	}
	entry := &model.WaitlistEntry{
		UserID:      userID,
		Date:        e.rules.Day(date),
		DisplayName: displayName,
	}
	if err := e.store.AppendWaitlist(ctx, entry); err != nil {
		return Outcome{}, err
	}
	return Waitlisted(entry.Position), nil
}

// promoteWaitlistHead hands a freed spot to the head of the date's
// queue: peek, allocate, then dequeue with compaction once the
// reservation row is durably written.  A stale head that somehow
// already holds a reservation is dropped and the next entry tried.
// The promoted user is notified after the state change; delivery
// failure does not undo anything.  Callers must hold the date lock.
func (e *Engine) promoteWaitlistHead(ctx context.Context, date time.Time) error {
	for {
		head, err := e.store.PeekWaitlistHead(ctx, date)
		if err != nil {
			return err
		}
		if head == nil {
			return nil
		}
		spot, err := e.allocate(ctx, head.UserID, head.DisplayName, date)
		switch {
		case err == nil:
			if _, err := e.store.PopWaitlistHead(ctx, date); err != nil {
				return err
			}
			e.notify(head.UserID, head.DisplayName, date, Confirmed(spot))
			return nil
		case errors.Is(err, ErrUserBooked):
			// Invariant violation left over from older state: the head
			// already holds the date.  Drop the entry and keep going.
			if _, err := e.store.PopWaitlistHead(ctx, date); err != nil {
				return err
			}
		case errors.Is(err, ErrNoSpotAvailable):
			return nil
		default:
			return err
		}
	}
}

// CancelWaitlist removes the user's own waitlist entry for a date;
// entries behind it move up one position.
func (e *Engine) CancelWaitlist(ctx context.Context, userID uint64, date time.Time) (Outcome, error) {
	date = e.rules.Day(date)
	unlock := e.lockDate(date)
	defer unlock()
	removed, err := e.store.RemoveWaitlist(ctx, userID, date)
	if err != nil {
		return Outcome{}, err
	}
	if !removed {
		return Rejected(ReasonNoActiveReservation), nil
	}
	return Outcome{Kind: OutcomeOK}, nil
}
