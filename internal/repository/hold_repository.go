package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/train-seat-reservation/internal/model"
)

// HoldRepo persists hold records in the holds and hold_seats tables.
// Seat state itself lives in train_seats and is only ever written by
// the inventory store; the rows here carry ownership, the immutable
// seat set, and the lifecycle state.  All timestamps are UTC.
type HoldRepo struct {
	db *sql.DB
}

// NewHoldRepo returns a HoldRepo bound to the provided database.
func NewHoldRepo(db *sql.DB) *HoldRepo { return &HoldRepo{db: db} }

// CreateHold inserts the hold row plus one hold_seats row per seat,
// inside a single transaction.
func (r *HoldRepo) CreateHold(ctx context.Context, h model.Hold) error {
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

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO holds (id, train_id, holder_id, state, expires_at, created_at) VALUES (?,?,?,?,?,?)`,
		h.ID, h.TrainID, h.HolderID, string(h.State), h.ExpiresAt.UTC(), h.CreatedAt.UTC()); err != nil {
		return err
	}

	query := `INSERT INTO hold_seats (hold_id, seat_number) VALUES `
	args := make([]interface{}, 0, len(h.SeatNumbers)*2)
	for i, n := range h.SeatNumbers {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, h.ID, n)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetHold fetches a hold and its seat set.
func (r *HoldRepo) GetHold(ctx context.Context, holdID string) (model.Hold, error) {
	var (
		h     model.Hold
		state string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, train_id, holder_id, state, expires_at, created_at FROM holds WHERE id = ? LIMIT 1`,
		holdID).Scan(&h.ID, &h.TrainID, &h.HolderID, &state, &h.ExpiresAt, &h.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Hold{}, model.ErrHoldNotFound
	}
	if err != nil {
		return model.Hold{}, err
	}
	h.State = model.HoldState(state)

	seats, err := r.seatNumbers(ctx, holdID)
	if err != nil {
		return model.Hold{}, err
	}
	h.SeatNumbers = seats
	return h, nil
}

// UpdateHoldState moves the hold's state from one value to another
// and reports whether the row changed.  The WHERE clause makes this a
// compare-and-set: a concurrent transition to another state leaves
// the row untouched and returns false.
func (r *HoldRepo) UpdateHoldState(ctx context.Context, holdID string, from, to model.HoldState) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE holds SET state = ? WHERE id = ? AND state = ?`,
		string(to), holdID, string(from))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListExpired returns every Active hold whose deadline is at or
// before now, including seat sets.
func (r *HoldRepo) ListExpired(ctx context.Context, now time.Time) ([]model.Hold, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, train_id, holder_id, state, expires_at, created_at
		   FROM holds WHERE state = ? AND expires_at <= ?`,
		string(model.HoldActive), now.UTC())
	if err != nil {
		return nil, err
	}
	var out []model.Hold
	for rows.Next() {
		var (
			h     model.Hold
			state string
		)
		if err := rows.Scan(&h.ID, &h.TrainID, &h.HolderID, &state, &h.ExpiresAt, &h.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		h.State = model.HoldState(state)
		out = append(out, h)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	for i := range out {
		seats, err := r.seatNumbers(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].SeatNumbers = seats
	}
	return out, nil
}

func (r *HoldRepo) seatNumbers(ctx context.Context, holdID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seat_number FROM hold_seats WHERE hold_id = ? ORDER BY seat_number`, holdID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seats []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		seats = append(seats, n)
	}
	return seats, rows.Err()
}
