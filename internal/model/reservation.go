package model

import "time"

// Reservation records that a user holds a specific spot on a specific
// date.  The uniqueness invariants are enforced at the storage layer:
// at most one reservation per (user, date) and per (date, spot).
// Rows are created by the allocator or by lottery resolution and are
// deleted by an explicit release or by the weekly cycle reset.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – user who holds the spot.
//  Date        – calendar day the reservation is valid for.
//  Spot        – spot identifier assigned to the user.
//  DisplayName – snapshot of the user's display name at booking time,
//                used for status listings without joining users.
//  CreatedAt   – creation timestamp.
type Reservation struct {
	ID          uint64    // reservations.id
	UserID      uint64    // reservations.user_id
	Date        time.Time // reservations.date (DATE column)
	Spot        string    // reservations.spot
	DisplayName string    // reservations.display_name
	CreatedAt   time.Time // reservations.created_at
}
