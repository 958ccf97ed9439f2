package handler

import (
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/parking-spot-reservation/internal/booking"
)

// dateLayout is the civil date format used in request paths and bodies.
const dateLayout = "2006-01-02"

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64: // jwt claims decode numbers as float64
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// getDisplayName reads the display name claim placed in the context by
// the JWT middleware; it degrades to an empty string rather than
// failing, a nameless snapshot is better than a rejected booking.
func getDisplayName(c echo.Context) string {
    if s, ok := c.Get("display_name").(string); ok {
        return s
    }
    return ""
}

// parseDate parses a civil date in the booking timezone.
func parseDate(s string, loc *time.Location) (time.Time, error) {
    return time.ParseInLocation(dateLayout, s, loc)
}

// outcomeStatus maps an engine outcome to an HTTP status code.
// Successful allocations are 201, deferred decisions (lottery buffer,
// waitlist) 202, and rejections carry reason-specific client codes.
func outcomeStatus(out booking.Outcome) int {
    switch out.Kind {
    case booking.OutcomeConfirmed:
        return http.StatusCreated
    case booking.OutcomeQueued, booking.OutcomeWaitlisted:
        return http.StatusAccepted
    case booking.OutcomeRejected:
        switch out.Reason {
        case booking.ReasonDuplicateBooking, booking.ReasonAlreadyQueued:
            return http.StatusConflict
        case booking.ReasonNoActiveReservation:
            return http.StatusNotFound
        default: // OUT_OF_RANGE, WEEKEND_DATE, NEXT_CYCLE_LOCKED, NOT_FIXED_SPOT
            return http.StatusUnprocessableEntity
        }
    default: // RELEASED, OK
        return http.StatusOK
    }
}
