package booking

import (
	"context"
	"time"
)

// SpotStatus is one line of a day listing: a spot and, when reserved,
// the display name of its occupant.
type SpotStatus struct {
	Spot     string `json:"spot"`
	Occupant string `json:"occupant,omitempty"`
	UserID   uint64 `json:"user_id,omitempty"`
	Released bool   `json:"released,omitempty"` // fixed spot folded in via a release
}

// DayStatus lists every allocatable spot for a date with its
// occupant, plus the names queued on the waitlist in order.
type DayStatus struct {
	Date     string       `json:"date"`
	Spots    []SpotStatus `json:"spots"`
	Waitlist []string     `json:"waitlist,omitempty"`
}

// DayStatusFor assembles the status listing for one date.  Spots come
// from the flex pool plus any fixed spots released for the date;
// reservations that survive on spots no longer in either pool (the
// pool was replaced after they were made) are appended at the end so
// no user state is hidden.
func (e *Engine) DayStatusFor(ctx context.Context, date time.Time) (DayStatus, error) {
	date = e.rules.Day(date)
	out := DayStatus{Date: e.rules.DateKey(date)}

	flex, err := e.store.FlexSpots(ctx)
	if err != nil {
		return out, err
	}
	released, err := e.store.ReleasedFixedSpots(ctx, date)
	if err != nil {
		return out, err
	}
	reservations, err := e.store.ReservationsByDate(ctx, date)
	if err != nil {
		return out, err
	}
	entries, err := e.store.WaitlistByDate(ctx, date)
	if err != nil {
		return out, err
	}

	occupant := make(map[string]*SpotStatus, len(reservations))
	sortSpots(flex)
	sortSpots(released)
	listed := make(map[string]struct{}, len(flex)+len(released))
	for _, s := range flex {
		out.Spots = append(out.Spots, SpotStatus{Spot: s})
		listed[s] = struct{}{}
	}
	for _, s := range released {
		if _, dup := listed[s]; dup {
			continue
		}
		out.Spots = append(out.Spots, SpotStatus{Spot: s, Released: true})
		listed[s] = struct{}{}
	}
	for i := range out.Spots {
		occupant[out.Spots[i].Spot] = &out.Spots[i]
	}
	for _, res := range reservations {
		if slot, ok := occupant[res.Spot]; ok {
			slot.Occupant = res.DisplayName
			slot.UserID = res.UserID
			continue
		}
		// Reservation on a spot that left the pool; still shown.
		out.Spots = append(out.Spots, SpotStatus{Spot: res.Spot, Occupant: res.DisplayName, UserID: res.UserID})
	}
	for _, en := range entries {
		out.Waitlist = append(out.Waitlist, en.DisplayName)
	}
	return out, nil
}

// WeekStatus returns the day listings for the currently displayed
// cycle, Monday through Friday.  From the Friday cutover and over the
// weekend that is the upcoming week.
func (e *Engine) WeekStatus(ctx context.Context) ([]DayStatus, error) {
	monday, friday := e.rules.Cycle(e.clock.Now())
	days := make([]DayStatus, 0, 5)
	for d := monday; !d.After(friday); d = d.AddDate(0, 0, 1) {
		st, err := e.DayStatusFor(ctx, d)
		if err != nil {
			return nil, err
		}
		days = append(days, st)
	}
	return days, nil
}
