package model

import "time"

// WaitlistEntry is a user queued for a date whose inventory was
// exhausted when they asked.  Positions for a given date always form
// a contiguous 1..N sequence; every removal renumbers the entries
// behind it.  Users are told their position, so the sequence is part
// of the observable contract, not an implementation detail.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – queued user.
//  Date        – date the user is waiting for.
//  Position    – 1-based place in the queue for that date.
//  DisplayName – snapshot of the user's display name at enqueue time.
//  CreatedAt   – creation timestamp.
type WaitlistEntry struct {
	ID          uint64    // waitlist_entries.id
	UserID      uint64    // waitlist_entries.user_id
	Date        time.Time // waitlist_entries.date (DATE column)
	Position    int       // waitlist_entries.position
	DisplayName string    // waitlist_entries.display_name
	CreatedAt   time.Time // waitlist_entries.created_at
}
