package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Reference week: Monday 2026-08-24 through Friday 2026-08-28,
// cutover Friday 17:00 UTC, fairness window 15 minutes.
var testRules = Rules{Location: time.UTC, CutoverHour: 17, LotteryWindow: 15 * time.Minute}

func TestCycle(t *testing.T) {
	cases := []struct {
		name   string
		now    time.Time
		monday time.Time
		friday time.Time
	}{
		{"midweek", at(2026, time.August, 26, 10, 0), date(2026, time.August, 24), date(2026, time.August, 28)},
		{"monday morning", at(2026, time.August, 24, 0, 0), date(2026, time.August, 24), date(2026, time.August, 28)},
		{"friday before cutover", at(2026, time.August, 28, 16, 59), date(2026, time.August, 24), date(2026, time.August, 28)},
		{"friday at cutover", at(2026, time.August, 28, 17, 0), date(2026, time.August, 31), date(2026, time.September, 4)},
		{"friday evening", at(2026, time.August, 28, 21, 0), date(2026, time.August, 31), date(2026, time.September, 4)},
		{"saturday", at(2026, time.August, 29, 12, 0), date(2026, time.August, 31), date(2026, time.September, 4)},
		{"sunday", at(2026, time.August, 30, 23, 0), date(2026, time.August, 31), date(2026, time.September, 4)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			monday, friday := testRules.Cycle(tc.now)
			assert.True(t, monday.Equal(tc.monday), "monday: got %s", monday)
			assert.True(t, friday.Equal(tc.friday), "friday: got %s", friday)
		})
	}
}

func TestValidate(t *testing.T) {
	midweek := at(2026, time.August, 26, 10, 0) // Wednesday
	cases := []struct {
		name   string
		now    time.Time
		date   time.Time
		reason Reason
	}{
		{"today", midweek, date(2026, time.August, 26), ReasonNone},
		{"later this week", midweek, date(2026, time.August, 28), ReasonNone},
		{"yesterday", midweek, date(2026, time.August, 25), ReasonOutOfRange},
		{"saturday", midweek, date(2026, time.August, 29), ReasonWeekendDate},
		{"sunday", midweek, date(2026, time.August, 30), ReasonWeekendDate},
		{"next cycle before cutover", midweek, date(2026, time.September, 2), ReasonNextCycleLocked},
		{"two cycles out", midweek, date(2026, time.September, 9), ReasonOutOfRange},
		{"next cycle after cutover", at(2026, time.August, 28, 17, 30), date(2026, time.September, 2), ReasonNone},
		{"new cycle monday after cutover", at(2026, time.August, 28, 17, 30), date(2026, time.August, 31), ReasonNone},
		{"ending cycle closed at cutover", at(2026, time.August, 28, 17, 30), date(2026, time.August, 28), ReasonOutOfRange},
		{"cycle after next, post cutover", at(2026, time.August, 28, 17, 30), date(2026, time.September, 9), ReasonNextCycleLocked},
		{"weekend books new cycle", at(2026, time.August, 29, 9, 0), date(2026, time.August, 31), ReasonNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.reason, testRules.Validate(tc.now, tc.date))
		})
	}
}

func TestCutoverInstants(t *testing.T) {
	midweek := at(2026, time.August, 26, 10, 0)
	last := testRules.LastCutover(midweek)
	require.True(t, last.Equal(at(2026, time.August, 21, 17, 0)), "got %s", last)
	next := testRules.NextCutover(midweek)
	require.True(t, next.Equal(at(2026, time.August, 28, 17, 0)), "got %s", next)

	// At the cutover instant itself the cutover is "last", not "next".
	cut := at(2026, time.August, 28, 17, 0)
	assert.True(t, testRules.LastCutover(cut).Equal(cut))
	assert.True(t, testRules.NextCutover(cut).Equal(at(2026, time.September, 4, 17, 0)))
}

func TestFairnessWindow(t *testing.T) {
	assert.True(t, testRules.InFairnessWindow(at(2026, time.August, 28, 17, 0)))
	assert.True(t, testRules.InFairnessWindow(at(2026, time.August, 28, 17, 14)))
	assert.False(t, testRules.InFairnessWindow(at(2026, time.August, 28, 17, 15)))
	assert.False(t, testRules.InFairnessWindow(at(2026, time.August, 26, 10, 0)))

	closeIn := testRules.WindowCloseIn(at(2026, time.August, 28, 17, 5))
	assert.Equal(t, 10*time.Minute, closeIn)
}

func TestDayNormalization(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	r := Rules{Location: loc, CutoverHour: 17, LotteryWindow: 15 * time.Minute}

	// 23:30 UTC on Tuesday is already Wednesday in Berlin.
	d := r.Day(time.Date(2026, time.August, 25, 23, 30, 0, 0, time.UTC))
	assert.Equal(t, "2026-08-26", r.DateKey(d))
}
