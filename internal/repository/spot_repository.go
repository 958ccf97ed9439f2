package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// SpotRepo provides access to the `spots` table, which holds both the
// flex and the fixed pool.  Pool membership is replaced wholesale by
// an administrator; replacing a pool never touches reservations made
// against spots that leave it — that is an explicit design choice, a
// pool swap must not silently delete user state.
type SpotRepo struct {
	db *sql.DB
}

// NewSpotRepo returns a SpotRepo bound to the given database.
func NewSpotRepo(db *sql.DB) *SpotRepo { return &SpotRepo{db: db} }

// ByPool returns the identifiers of all active spots in a pool.
func (r *SpotRepo) ByPool(ctx context.Context, pool string) ([]string, error) {
	const q = `SELECT identifier FROM spots WHERE pool = ? AND is_active = 1`
	rows, err := r.db.QueryContext(ctx, q, pool)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// ReplacePool swaps the membership of one pool in a single
// transaction: every row of the pool is removed and the new
// identifiers inserted.  Rows of the other pool are untouched.
func (r *SpotRepo) ReplacePool(ctx context.Context, pool string, spots []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM spots WHERE pool = ?`, pool); err != nil {
		return err
	}
	if len(spots) > 0 {
		query := `INSERT INTO spots (identifier, pool, is_active) VALUES `
		args := make([]interface{}, 0, len(spots)*2)
		for i, s := range spots {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, 1)"
			args = append(args, s, pool)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Get returns a single spot by identifier, or ErrNotFound.
func (r *SpotRepo) Get(ctx context.Context, identifier string) (*model.Spot, error) {
	const q = `SELECT identifier, pool, is_active FROM spots WHERE identifier = ?`
	var s model.Spot
	err := r.db.QueryRowContext(ctx, q, identifier).Scan(&s.Identifier, &s.Pool, &s.IsActive)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}
