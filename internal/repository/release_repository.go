package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// ReleaseRepo provides access to the `fixed_spot_releases` table.  A
// release folds a fixed spot into the shared inventory for a date
// range.  Rows whose end date has passed are inert and kept as
// history; withdrawal only removes future and ongoing rows.
type ReleaseRepo struct {
	db  *sql.DB
	loc *time.Location
}

// NewReleaseRepo returns a ReleaseRepo bound to the given database.
func NewReleaseRepo(db *sql.DB, loc *time.Location) *ReleaseRepo {
	return &ReleaseRepo{db: db, loc: loc}
}

// Create inserts a release interval and populates its ID.  Pool
// membership of the spot is validated by the engine before calling.
func (r *ReleaseRepo) Create(ctx context.Context, rel *model.FixedSpotRelease) error {
	const q = `INSERT INTO fixed_spot_releases (spot, start_date, end_date) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rel.Spot, rel.StartDate.Format(dateLayout), rel.EndDate.Format(dateLayout))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rel.ID = uint64(id)
	return nil
}

// SpotsReleasedOn returns the identifiers of fixed spots covered by a
// release on the given date.  Only spots still active in the fixed
// pool qualify; a spot that was moved out of the pool after the
// release was recorded no longer counts as inventory.
func (r *ReleaseRepo) SpotsReleasedOn(ctx context.Context, date time.Time) ([]string, error) {
	const q = `SELECT DISTINCT fr.spot
	           FROM fixed_spot_releases fr
	           JOIN spots s ON s.identifier = fr.spot
	           WHERE s.pool = 'FIXED' AND s.is_active = 1
	             AND fr.start_date <= ? AND fr.end_date >= ?`
	day := date.Format(dateLayout)
	rows, err := r.db.QueryContext(ctx, q, day, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var spots []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		spots = append(spots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return spots, nil
}

// Withdraw deletes release rows for the spot whose end date is on or
// after from, returning the number removed.
func (r *ReleaseRepo) Withdraw(ctx context.Context, spot string, from time.Time) (int64, error) {
	const q = `DELETE FROM fixed_spot_releases WHERE spot = ? AND end_date >= ?`
	res, err := r.db.ExecContext(ctx, q, spot, from.Format(dateLayout))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
