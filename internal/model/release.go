package model

import "time"

// FixedSpotRelease marks a date range during which the owner of a
// fixed spot has opted out, folding the spot into the shared flex
// inventory for the covered dates.  The spot must belong to the fixed
// pool.  Rows whose end date has passed are inert but are kept as
// history rather than purged.
//
// Fields:
//  ID        – primary key identifier.
//  Spot      – fixed spot identifier being released.
//  StartDate – first covered date (inclusive).
//  EndDate   – last covered date (inclusive).
//  CreatedAt – creation timestamp.
type FixedSpotRelease struct {
	ID        uint64    // fixed_spot_releases.id
	Spot      string    // fixed_spot_releases.spot
	StartDate time.Time // fixed_spot_releases.start_date (DATE column)
	EndDate   time.Time // fixed_spot_releases.end_date (DATE column)
	CreatedAt time.Time // fixed_spot_releases.created_at
}
