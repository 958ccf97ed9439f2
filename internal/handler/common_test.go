package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/parking-spot-reservation/internal/booking"
)

func TestOutcomeStatus(t *testing.T) {
	cases := []struct {
		out  booking.Outcome
		code int
	}{
		{booking.Confirmed("1"), http.StatusCreated},
		{booking.Queued(1), http.StatusAccepted},
		{booking.Waitlisted(2), http.StatusAccepted},
		{booking.Released("1"), http.StatusOK},
		{booking.Outcome{Kind: booking.OutcomeOK}, http.StatusOK},
		{booking.Rejected(booking.ReasonDuplicateBooking), http.StatusConflict},
		{booking.RejectedAt(booking.ReasonAlreadyQueued, 3), http.StatusConflict},
		{booking.Rejected(booking.ReasonNoActiveReservation), http.StatusNotFound},
		{booking.Rejected(booking.ReasonWeekendDate), http.StatusUnprocessableEntity},
		{booking.Rejected(booking.ReasonNextCycleLocked), http.StatusUnprocessableEntity},
		{booking.Rejected(booking.ReasonOutOfRange), http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, outcomeStatus(tc.out), "outcome %+v", tc.out)
	}
}

func TestParseDate(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	d, err := parseDate("2026-08-31", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.August, 31, 0, 0, 0, 0, loc), d)

	_, err = parseDate("31.08.2026", loc)
	assert.Error(t, err)
	_, err = parseDate("", loc)
	assert.Error(t, err)
}
