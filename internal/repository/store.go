package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// Store bundles the individual repositories behind the booking
// engine's persistence interface.  It is a thin delegation layer; the
// invariants live in the repositories and the schema.
type Store struct {
	Spots        *SpotRepo
	Reservations *ReservationRepo
	Waitlist     *WaitlistRepo
	Releases     *ReleaseRepo
}

// NewStore wires all repositories onto one database handle, reading
// DATE columns in the given civil timezone.
func NewStore(db *sql.DB, loc *time.Location) *Store {
	return &Store{
		Spots:        NewSpotRepo(db),
		Reservations: NewReservationRepo(db, loc),
		Waitlist:     NewWaitlistRepo(db, loc),
		Releases:     NewReleaseRepo(db, loc),
	}
}

func (s *Store) FlexSpots(ctx context.Context) ([]string, error) {
	return s.Spots.ByPool(ctx, model.PoolFlex)
}

func (s *Store) FixedSpots(ctx context.Context) ([]string, error) {
	return s.Spots.ByPool(ctx, model.PoolFixed)
}

func (s *Store) ReplaceFlexPool(ctx context.Context, spots []string) error {
	return s.Spots.ReplacePool(ctx, model.PoolFlex, spots)
}

func (s *Store) ReplaceFixedPool(ctx context.Context, spots []string) error {
	return s.Spots.ReplacePool(ctx, model.PoolFixed, spots)
}

func (s *Store) CreateReservation(ctx context.Context, res *model.Reservation) error {
	return s.Reservations.Create(ctx, res)
}

func (s *Store) ReservationForUser(ctx context.Context, userID uint64, date time.Time) (*model.Reservation, error) {
	return s.Reservations.ForUser(ctx, userID, date)
}

func (s *Store) ReservationsByDate(ctx context.Context, date time.Time) ([]model.Reservation, error) {
	return s.Reservations.ByDate(ctx, date)
}

func (s *Store) DeleteReservation(ctx context.Context, userID uint64, date time.Time) (*model.Reservation, error) {
	return s.Reservations.Delete(ctx, userID, date)
}

func (s *Store) DeleteReservationRange(ctx context.Context, from, to time.Time) (int64, error) {
	return s.Reservations.DeleteRange(ctx, from, to)
}

func (s *Store) DeleteReservationsBefore(ctx context.Context, day time.Time) (int64, error) {
	return s.Reservations.DeleteBefore(ctx, day)
}

func (s *Store) WaitlistByDate(ctx context.Context, date time.Time) ([]model.WaitlistEntry, error) {
	return s.Waitlist.ByDate(ctx, date)
}

func (s *Store) WaitlistEntryForUser(ctx context.Context, userID uint64, date time.Time) (*model.WaitlistEntry, error) {
	return s.Waitlist.ForUser(ctx, userID, date)
}

func (s *Store) AppendWaitlist(ctx context.Context, entry *model.WaitlistEntry) error {
	return s.Waitlist.Append(ctx, entry)
}

func (s *Store) PeekWaitlistHead(ctx context.Context, date time.Time) (*model.WaitlistEntry, error) {
	return s.Waitlist.PeekHead(ctx, date)
}

func (s *Store) PopWaitlistHead(ctx context.Context, date time.Time) (*model.WaitlistEntry, error) {
	return s.Waitlist.PopHead(ctx, date)
}

func (s *Store) RemoveWaitlist(ctx context.Context, userID uint64, date time.Time) (bool, error) {
	return s.Waitlist.Remove(ctx, userID, date)
}

func (s *Store) DeleteWaitlistRange(ctx context.Context, from, to time.Time) (int64, error) {
	return s.Waitlist.DeleteRange(ctx, from, to)
}

func (s *Store) DeleteWaitlistBefore(ctx context.Context, day time.Time) (int64, error) {
	return s.Waitlist.DeleteBefore(ctx, day)
}

func (s *Store) CreateRelease(ctx context.Context, rel *model.FixedSpotRelease) error {
	return s.Releases.Create(ctx, rel)
}

func (s *Store) ReleasedFixedSpots(ctx context.Context, date time.Time) ([]string, error) {
	return s.Releases.SpotsReleasedOn(ctx, date)
}

func (s *Store) WithdrawReleases(ctx context.Context, spot string, from time.Time) (int64, error) {
	return s.Releases.Withdraw(ctx, spot, from)
}
