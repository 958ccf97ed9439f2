package booking

import "time"

// Rules captures the temporal contract of the booking cycle: the civil
// timezone all dates live in, the Friday hour at which one cycle's
// booking validity ends and the next opens, and the length of the
// fairness window during which next-cycle requests are buffered for
// the lottery instead of allocated on arrival.
//
// Every method is a pure function of its arguments; Rules itself holds
// no mutable state and performs no I/O.
type Rules struct {
	Location      *time.Location // civil timezone for all calendar math
	CutoverHour   int            // hour of day on Friday, 0-23
	LotteryWindow time.Duration  // fairness window length after cutover
}

// Day truncates t to midnight of its calendar day in the booking
// timezone.  All dates handled by the engine are normalized through
// this before comparison or storage.
func (r Rules) Day(t time.Time) time.Time {
	t = t.In(r.Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, r.Location)
}

// workday reports whether d falls on Monday through Friday.
func workday(d time.Time) bool {
	wd := d.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// mondayOf returns the Monday of the ISO week containing d.
func (r Rules) mondayOf(d time.Time) time.Time {
	offset := int(d.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7 // Sunday belongs to the week that started six days earlier
	}
	return r.Day(d).AddDate(0, 0, -offset)
}

// cutoverFor returns the cutover instant of the cycle ending on the
// given Friday: that Friday at CutoverHour in the booking timezone.
func (r Rules) cutoverFor(friday time.Time) time.Time {
	d := r.Day(friday)
	return time.Date(d.Year(), d.Month(), d.Day(), r.CutoverHour, 0, 0, 0, r.Location)
}

// Cycle returns the Monday and Friday bounding the cycle that is
// active at now.  From the Friday cutover instant onward, and on
// Saturdays and Sundays, the active cycle is the upcoming week;
// otherwise it is the week containing now.
func (r Rules) Cycle(now time.Time) (monday, friday time.Time) {
	now = now.In(r.Location)
	monday = r.mondayOf(now)
	friday = monday.AddDate(0, 0, 4)
	if !workday(now) || !now.Before(r.cutoverFor(friday)) {
		monday = monday.AddDate(0, 0, 7)
		friday = friday.AddDate(0, 0, 7)
	}
	return monday, friday
}

// InCycle reports whether date lies inside the cycle active at now.
func (r Rules) InCycle(now, date time.Time) bool {
	d := r.Day(date)
	monday, friday := r.Cycle(now)
	return !d.Before(monday) && !d.After(friday)
}

// Validate decides whether date may be booked at the instant now.  It
// returns ReasonNone when booking is allowed, and otherwise the
// rejection reason: OutOfRange for past dates and anything beyond the
// next cycle, WeekendDate for non-work days, NextCycleLocked for
// next-cycle dates requested before their opening cutover.
func (r Rules) Validate(now, date time.Time) Reason {
	d := r.Day(date)
	if d.Before(r.Day(now)) {
		return ReasonOutOfRange
	}
	if !workday(d) {
		return ReasonWeekendDate
	}
	monday, friday := r.Cycle(now)
	if !d.Before(monday) && !d.After(friday) {
		return ReasonNone
	}
	if !d.Before(monday.AddDate(0, 0, 7)) && !d.After(friday.AddDate(0, 0, 7)) {
		// The following cycle only unlocks at the cutover instant, at
		// which point Cycle shifts forward and the date falls inside it.
		return ReasonNextCycleLocked
	}
	return ReasonOutOfRange
}

// LastCutover returns the most recent cutover instant at or before
// now, i.e. the instant that opened the currently active cycle.
func (r Rules) LastCutover(now time.Time) time.Time {
	now = now.In(r.Location)
	friday := r.mondayOf(now).AddDate(0, 0, 4)
	c := r.cutoverFor(friday)
	if now.Before(c) {
		c = c.AddDate(0, 0, -7)
	}
	return c
}

// NextCutover returns the first cutover instant strictly after now.
func (r Rules) NextCutover(now time.Time) time.Time {
	return r.LastCutover(now).AddDate(0, 0, 7)
}

// InFairnessWindow reports whether now falls inside the lottery
// window [cutover, cutover+LotteryWindow) of the most recent cutover.
// While it is open, requests for the just-opened cycle are buffered
// and resolved in shuffled order at its close.
func (r Rules) InFairnessWindow(now time.Time) bool {
	return now.Sub(r.LastCutover(now)) < r.LotteryWindow
}

// WindowCloseIn returns how long the current fairness window stays
// open from now; zero or negative when it is already closed.
func (r Rules) WindowCloseIn(now time.Time) time.Duration {
	return r.LastCutover(now).Add(r.LotteryWindow).Sub(now)
}

// DateKey renders a date as its canonical YYYY-MM-DD form, used for
// per-date lock and buffer keys and for DATE columns.
func (r Rules) DateKey(date time.Time) string {
	return r.Day(date).Format("2006-01-02")
}
