package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/booking"
	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// ReservationRepo provides CRUD operations for the `reservations`
// table.  Two unique keys guard the core invariants:
//
//	uq_user_date  (user_id, date) – a user holds at most one spot per day
//	uq_date_spot  (date, spot)    – a spot is assigned at most once per day
//
// Duplicate-key violations are translated into booking.ErrUserBooked
// and booking.ErrSpotTaken so the allocator can retry the next
// candidate after losing a race.  All DATE values are exchanged as
// YYYY-MM-DD strings; scanned dates are rebuilt at midnight in the
// repository's civil timezone.
type ReservationRepo struct {
	db  *sql.DB
	loc *time.Location
}

// NewReservationRepo returns a ReservationRepo bound to the given
// database, interpreting DATE columns in loc.
func NewReservationRepo(db *sql.DB, loc *time.Location) *ReservationRepo {
	return &ReservationRepo{db: db, loc: loc}
}

const dateLayout = "2006-01-02"

// civilDate rebuilds a scanned DATE value at midnight in loc.  The
// driver returns DATE columns at midnight UTC; only the calendar
// fields are meaningful.
func civilDate(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Create inserts a reservation and populates its ID.  It returns
// booking.ErrUserBooked or booking.ErrSpotTaken when the respective
// unique key rejects the row.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations (user_id, date, spot, display_name) VALUES (?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, res.UserID, res.Date.Format(dateLayout), res.Spot, res.DisplayName)
	if err != nil {
		if mysqlDuplicate(err, "uq_user_date") {
			return booking.ErrUserBooked
		}
		if mysqlDuplicate(err, "uq_date_spot") {
			return booking.ErrSpotTaken
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// ForUser returns the user's reservation for a date, or nil.
func (r *ReservationRepo) ForUser(ctx context.Context, userID uint64, date time.Time) (*model.Reservation, error) {
	const q = `SELECT id, user_id, date, spot, display_name, created_at
	           FROM reservations WHERE user_id = ? AND date = ?`
	res, err := r.scanOne(r.db.QueryRowContext(ctx, q, userID, date.Format(dateLayout)))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return res, err
}

// ByDate lists all reservations for a date ordered by spot.
func (r *ReservationRepo) ByDate(ctx context.Context, date time.Time) ([]model.Reservation, error) {
	const q = `SELECT id, user_id, date, spot, display_name, created_at
	           FROM reservations WHERE date = ? ORDER BY spot`
	rows, err := r.db.QueryContext(ctx, q, date.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		var res model.Reservation
		var d time.Time
		if err := rows.Scan(&res.ID, &res.UserID, &d, &res.Spot, &res.DisplayName, &res.CreatedAt); err != nil {
			return nil, err
		}
		res.Date = civilDate(d, r.loc)
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the user's reservation for a date and returns the
// removed row, or nil when there was nothing to remove.  Read and
// delete run in one transaction so the returned spot is the one that
// actually freed.
func (r *ReservationRepo) Delete(ctx context.Context, userID uint64, date time.Time) (*model.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const q = `SELECT id, user_id, date, spot, display_name, created_at
	           FROM reservations WHERE user_id = ? AND date = ?`
	res, err := r.scanOne(tx.QueryRowContext(ctx, q, userID, date.Format(dateLayout)))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, res.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return res, nil
}

// DeleteRange bulk-deletes reservations with from <= date <= to and
// returns the number of rows removed (used by the cycle reset).
func (r *ReservationRepo) DeleteRange(ctx context.Context, from, to time.Time) (int64, error) {
	const q = `DELETE FROM reservations WHERE date >= ? AND date <= ?`
	res, err := r.db.ExecContext(ctx, q, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteBefore removes reservations dated strictly before day (used
// by the startup sweep after missed cutovers).
func (r *ReservationRepo) DeleteBefore(ctx context.Context, day time.Time) (int64, error) {
	const q = `DELETE FROM reservations WHERE date < ?`
	res, err := r.db.ExecContext(ctx, q, day.Format(dateLayout))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *ReservationRepo) scanOne(row *sql.Row) (*model.Reservation, error) {
	var res model.Reservation
	var d time.Time
	if err := row.Scan(&res.ID, &res.UserID, &d, &res.Spot, &res.DisplayName, &res.CreatedAt); err != nil {
		return nil, err
	}
	res.Date = civilDate(d, r.loc)
	return &res, nil
}
