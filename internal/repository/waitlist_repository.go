package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// WaitlistRepo provides access to the `waitlist_entries` table.
// Positions for a given date must form a contiguous 1..N sequence at
// all times; every removal therefore renumbers the entries behind it
// inside the same transaction.  Renumbering is a full per-date pass —
// O(n) per removal, which is fine at this scale and required anyway
// because users are told "position N".
//
// A unique key on (date, position) backstops contiguity; decrements
// run in ascending position order so the key is never transiently
// violated.
type WaitlistRepo struct {
	db  *sql.DB
	loc *time.Location
}

// NewWaitlistRepo returns a WaitlistRepo bound to the given database.
func NewWaitlistRepo(db *sql.DB, loc *time.Location) *WaitlistRepo {
	return &WaitlistRepo{db: db, loc: loc}
}

// ByDate lists a date's waitlist ordered by position.
func (r *WaitlistRepo) ByDate(ctx context.Context, date time.Time) ([]model.WaitlistEntry, error) {
	const q = `SELECT id, user_id, date, position, display_name, created_at
	           FROM waitlist_entries WHERE date = ? ORDER BY position`
	rows, err := r.db.QueryContext(ctx, q, date.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.WaitlistEntry
	for rows.Next() {
		var en model.WaitlistEntry
		var d time.Time
		if err := rows.Scan(&en.ID, &en.UserID, &d, &en.Position, &en.DisplayName, &en.CreatedAt); err != nil {
			return nil, err
		}
		en.Date = civilDate(d, r.loc)
		out = append(out, en)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ForUser returns the user's entry for a date, or nil when the user
// is not queued.
func (r *WaitlistRepo) ForUser(ctx context.Context, userID uint64, date time.Time) (*model.WaitlistEntry, error) {
	const q = `SELECT id, user_id, date, position, display_name, created_at
	           FROM waitlist_entries WHERE user_id = ? AND date = ?`
	en, err := scanWaitlistRow(r.db.QueryRowContext(ctx, q, userID, date.Format(dateLayout)), r.loc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return en, err
}

// PeekHead returns the position-1 entry for a date without mutating,
// or nil when the queue is empty.
func (r *WaitlistRepo) PeekHead(ctx context.Context, date time.Time) (*model.WaitlistEntry, error) {
	const q = `SELECT id, user_id, date, position, display_name, created_at
	           FROM waitlist_entries WHERE date = ? AND position = 1`
	en, err := scanWaitlistRow(r.db.QueryRowContext(ctx, q, date.Format(dateLayout)), r.loc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return en, err
}

// Append adds the user at the tail of the date's queue and fills in
// the assigned position and ID.  The next position is computed and
// the row inserted in one transaction.
func (r *WaitlistRepo) Append(ctx context.Context, entry *model.WaitlistEntry) error {
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
	var next int
	const maxQ = `SELECT COALESCE(MAX(position), 0) + 1 FROM waitlist_entries WHERE date = ?`
	if err := tx.QueryRowContext(ctx, maxQ, entry.Date.Format(dateLayout)).Scan(&next); err != nil {
		return err
	}
	const ins = `INSERT INTO waitlist_entries (user_id, date, position, display_name) VALUES (?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, ins, entry.UserID, entry.Date.Format(dateLayout), next, entry.DisplayName)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	entry.ID = uint64(id)
	entry.Position = next
	return nil
}

// PopHead removes the position-1 entry for a date and shifts every
// remaining entry up by one.  It returns the removed entry, or nil
// when the queue was empty.
func (r *WaitlistRepo) PopHead(ctx context.Context, date time.Time) (*model.WaitlistEntry, error) {
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
	const q = `SELECT id, user_id, date, position, display_name, created_at
	           FROM waitlist_entries WHERE date = ? AND position = 1`
	head, err := scanWaitlistRow(tx.QueryRowContext(ctx, q, date.Format(dateLayout)), r.loc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := compactTx(ctx, tx, date, head.ID, head.Position); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return head, nil
}

// Remove deletes the user's entry for a date, whatever its position,
// applying the same compaction rule.  It reports whether an entry was
// removed.
func (r *WaitlistRepo) Remove(ctx context.Context, userID uint64, date time.Time) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const q = `SELECT id, user_id, date, position, display_name, created_at
	           FROM waitlist_entries WHERE user_id = ? AND date = ?`
	en, err := scanWaitlistRow(tx.QueryRowContext(ctx, q, userID, date.Format(dateLayout)), r.loc)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := compactTx(ctx, tx, date, en.ID, en.Position); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true
	return true, nil
}

// compactTx deletes the entry with the given id and closes the gap it
// leaves: every entry of the date behind the removed position moves
// up by one, in ascending order so the (date, position) unique key
// never collides mid-update.
func compactTx(ctx context.Context, tx *sql.Tx, date time.Time, id uint64, position int) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM waitlist_entries WHERE id = ?`, id); err != nil {
		return err
	}
	const shift = `UPDATE waitlist_entries SET position = position - 1
	               WHERE date = ? AND position > ? ORDER BY position ASC`
	_, err := tx.ExecContext(ctx, shift, date.Format(dateLayout), position)
	return err
}

// DeleteRange bulk-deletes entries with from <= date <= to and
// returns the number removed.  No renumbering is needed: whole dates
// disappear at once.
func (r *WaitlistRepo) DeleteRange(ctx context.Context, from, to time.Time) (int64, error) {
	const q = `DELETE FROM waitlist_entries WHERE date >= ? AND date <= ?`
	res, err := r.db.ExecContext(ctx, q, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteBefore removes entries dated strictly before day.
func (r *WaitlistRepo) DeleteBefore(ctx context.Context, day time.Time) (int64, error) {
	const q = `DELETE FROM waitlist_entries WHERE date < ?`
	res, err := r.db.ExecContext(ctx, q, day.Format(dateLayout))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// scanWaitlistRow scans a single waitlist row from a QueryRow result.
func scanWaitlistRow(row *sql.Row, loc *time.Location) (*model.WaitlistEntry, error) {
	var en model.WaitlistEntry
	var d time.Time
	if err := row.Scan(&en.ID, &en.UserID, &d, &en.Position, &en.DisplayName, &en.CreatedAt); err != nil {
		return nil, err
	}
	en.Date = civilDate(d, loc)
	return &en, nil
}
