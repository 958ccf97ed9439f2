package booking

// Reason classifies why a request was rejected.  All validation
// failures are resolved locally and reported as values; none of them
// is an error in the Go sense.
type Reason string

const (
	// ReasonNone is the zero value and means the request is allowed.
	ReasonNone Reason = ""
	// ReasonOutOfRange marks a date before today or outside the
	// current and next cycles.
	ReasonOutOfRange Reason = "OUT_OF_RANGE"
	// ReasonWeekendDate marks a Saturday or Sunday target.
	ReasonWeekendDate Reason = "WEEKEND_DATE"
	// ReasonNextCycleLocked marks a next-cycle date requested before
	// the Friday cutover that opens it.
	ReasonNextCycleLocked Reason = "NEXT_CYCLE_LOCKED"
	// ReasonDuplicateBooking means the user already holds a
	// reservation for the date.
	ReasonDuplicateBooking Reason = "DUPLICATE_BOOKING"
	// ReasonAlreadyQueued means the user is already buffered in the
	// lottery or already on the waitlist for the date.
	ReasonAlreadyQueued Reason = "ALREADY_QUEUED"
	// ReasonNoSpotAvailable means both pools were exhausted.  It is a
	// normal outcome, not a failure.
	ReasonNoSpotAvailable Reason = "NO_SPOT_AVAILABLE"
	// ReasonNotFixedSpot marks a release attempt on a spot outside
	// the fixed pool.
	ReasonNotFixedSpot Reason = "NOT_FIXED_SPOT"
	// ReasonNoActiveReservation marks a release or withdrawal with
	// nothing to act on.
	ReasonNoActiveReservation Reason = "NO_ACTIVE_RESERVATION"
)

// OutcomeKind tags the variant of an Outcome.
type OutcomeKind string

const (
	OutcomeConfirmed  OutcomeKind = "CONFIRMED"
	OutcomeQueued     OutcomeKind = "QUEUED"
	OutcomeWaitlisted OutcomeKind = "WAITLISTED"
	OutcomeReleased   OutcomeKind = "RELEASED"
	OutcomeOK         OutcomeKind = "OK"
	OutcomeRejected   OutcomeKind = "REJECTED"
)

// Outcome is the tagged result of a command-layer operation.  Exactly
// one variant applies: Confirmed carries the assigned spot, Queued and
// Waitlisted carry a 1-based position, Rejected carries a reason (and,
// for AlreadyQueued, the requester's current position for
// transparency).
type Outcome struct {
	Kind     OutcomeKind `json:"kind"`
	Spot     string      `json:"spot,omitempty"`
	Position int         `json:"position,omitempty"`
	Reason   Reason      `json:"reason,omitempty"`
}

// Confirmed builds the outcome for a successful allocation.
func Confirmed(spot string) Outcome { return Outcome{Kind: OutcomeConfirmed, Spot: spot} }

// Queued builds the outcome for a request buffered in the lottery.
func Queued(position int) Outcome { return Outcome{Kind: OutcomeQueued, Position: position} }

// Waitlisted builds the outcome for a request parked on the waitlist.
func Waitlisted(position int) Outcome { return Outcome{Kind: OutcomeWaitlisted, Position: position} }

// Released builds the outcome for a released reservation.
func Released(spot string) Outcome { return Outcome{Kind: OutcomeReleased, Spot: spot} }

// Rejected builds a rejection outcome for the given reason.
func Rejected(reason Reason) Outcome { return Outcome{Kind: OutcomeRejected, Reason: reason} }

// RejectedAt is Rejected with the requester's current queue position
// attached (used for AlreadyQueued).
func RejectedAt(reason Reason, position int) Outcome {
	return Outcome{Kind: OutcomeRejected, Reason: reason, Position: position}
}
