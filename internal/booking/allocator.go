package booking

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// spotLess orders spot identifiers ascending, numerically when both
// sides parse as integers so that "9" sorts before "10".
func spotLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

// sortSpots sorts identifiers in ascending spotLess order.
func sortSpots(ids []string) {
	sort.Slice(ids, func(i, j int) bool { return spotLess(ids[i], ids[j]) })
}

// candidateSpots builds the ordered allocation sequence for a date:
// the flex pool in ascending identifier order, then the fixed spots
// currently released for that date as a secondary pool.  A fixed spot
// that somehow also appears in the flex pool is listed once.
func (e *Engine) candidateSpots(ctx context.Context, date time.Time) ([]string, error) {
	flex, err := e.store.FlexSpots(ctx)
	if err != nil {
		return nil, err
	}
	released, err := e.store.ReleasedFixedSpots(ctx, date)
	if err != nil {
		return nil, err
	}
	sortSpots(flex)
	sortSpots(released)
	seen := make(map[string]struct{}, len(flex))
	for _, s := range flex {
		seen[s] = struct{}{}
	}
	out := flex
	for _, s := range released {
		if _, dup := seen[s]; !dup {
			out = append(out, s)
		}
	}
	return out, nil
}

// allocate assigns the lowest available candidate spot for the date
// to the user and returns its identifier.  It returns ErrUserBooked
// when the user already holds the date and ErrNoSpotAvailable when
// every candidate is reserved.  Losing the (date, spot) unique-key
// race to a concurrent caller is handled by moving on to the next
// candidate, never by failing the request.
//
// Callers must hold the date's critical section.
func (e *Engine) allocate(ctx context.Context, userID uint64, displayName string, date time.Time) (string, error) {
	existing, err := e.store.ReservationForUser(ctx, userID, date)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", ErrUserBooked
	}
	candidates, err := e.candidateSpots(ctx, date)
	if err != nil {
		return "", err
	}
	current, err := e.store.ReservationsByDate(ctx, date)
	if err != nil {
		return "", err
	}
	reserved := make(map[string]struct{}, len(current))
	for _, res := range current {
		reserved[res.Spot] = struct{}{}
	}
	for _, spot := range candidates {
		if _, taken := reserved[spot]; taken {
			continue
		}
		rec := &model.Reservation{
			UserID:      userID,
			Date:        e.rules.Day(date),
			Spot:        spot,
			DisplayName: displayName,
		}
		err := e.store.CreateReservation(ctx, rec)
		switch {
		case err == nil:
			return spot, nil
		case errors.Is(err, ErrSpotTaken):
			continue // lost the race for this spot, try the next one
		case errors.Is(err, ErrUserBooked):
			return "", ErrUserBooked
		default:
			return "", err
		}
	}
	return "", ErrNoSpotAvailable
}
