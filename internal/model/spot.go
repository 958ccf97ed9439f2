package model

// Pool names the two kinds of parking inventory.  FLEX spots are
// allocated per date on a first-come basis; FIXED spots belong to a
// permanent owner and only enter circulation through a release.
const (
	PoolFlex  = "FLEX"
	PoolFixed = "FIXED"
)

// Spot represents a single parking spot as stored in the `spots`
// table.  The identifier is the human-visible token painted on the
// ground (usually a number, but any string is accepted).  Membership
// in the flex pool is replaced wholesale by an administrator;
// replacing the pool never touches existing reservations.
//
// Fields:
//  Identifier – spot token, primary key.
//  Pool       – FLEX or FIXED.
//  IsActive   – soft availability flag.
type Spot struct {
	Identifier string // spots.identifier
	Pool       string // spots.pool
	IsActive   bool   // spots.is_active
}
