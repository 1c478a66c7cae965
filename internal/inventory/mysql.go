package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/train-seat-reservation/internal/model"
)

// MySQL is the durable Store implementation over the train_seats
// table.  TryTransition runs inside one transaction: it locks the
// requested rows with SELECT ... FOR UPDATE ordered by seat number (so
// InnoDB acquires the index row locks in the same order for every
// caller), re-validates each row against the expectation, and applies
// all updates or rolls back.  SeatMap is a plain read with no locks.
type MySQL struct {
	db *sql.DB
}

// NewMySQL returns a Store backed by the given database handle.
func NewMySQL(db *sql.DB) *MySQL { return &MySQL{db: db} }

func (s *MySQL) CreateSeats(ctx context.Context, trainID uint64, seatNumbers []string) error {
	if len(seatNumbers) == 0 {
		return fmt.Errorf("train %d: empty seat set", trainID)
	}
	query := `INSERT INTO train_seats (train_id, seat_number, status) VALUES `
	args := make([]interface{}, 0, len(seatNumbers)*3)
	for i, n := range seatNumbers {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, trainID, n, model.SeatAvailable.String())
	}
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *MySQL) SeatMap(ctx context.Context, trainID uint64) ([]SeatView, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seat_number, status, holder_id, hold_id, hold_expires_at, booking_id
		   FROM train_seats WHERE train_id = ? ORDER BY seat_number`,
		trainID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SeatView
	for rows.Next() {
		v, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, model.ErrTrainNotFound
	}
	return out, nil
}

func (s *MySQL) TryTransition(ctx context.Context, trainID uint64, seatNumbers []string, from, to model.SeatStatus) error {
	if len(seatNumbers) == 0 {
		return fmt.Errorf("empty seat set")
	}
	ordered := uniqueSorted(seatNumbers)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the rows in ascending seat-number order.
	query := fmt.Sprintf(
		`SELECT seat_number, status, holder_id, hold_id, hold_expires_at, booking_id
		   FROM train_seats
		  WHERE train_id = ? AND seat_number IN (%s)
		  ORDER BY seat_number
		  FOR UPDATE`,
		placeholders(len(ordered)))
	args := make([]interface{}, 0, len(ordered)+1)
	args = append(args, trainID)
	for _, n := range ordered {
		args = append(args, n)
	}
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	current := make(map[string]model.SeatStatus, len(ordered))
	for rows.Next() {
		v, scanErr := scanSeat(rows)
		if scanErr != nil {
			rows.Close()
			return scanErr
		}
		current[v.SeatNumber] = v.Status
	}
	if err := rows.Close(); err != nil {
		return err
	}

	for _, n := range ordered {
		st, ok := current[n]
		if !ok {
			return fmt.Errorf("%w: seat %s on train %d", model.ErrUnknownSeat, n, trainID)
		}
		if !st.Matches(from) {
			return fmt.Errorf("%w: seat %s", ErrConflict, n)
		}
	}

	holderID, holdID, expiresAt, bookingID := statusColumns(to)
	update := fmt.Sprintf(
		`UPDATE train_seats
		    SET status = ?, holder_id = ?, hold_id = ?, hold_expires_at = ?, booking_id = ?
		  WHERE train_id = ? AND seat_number IN (%s)`,
		placeholders(len(ordered)))
	uargs := make([]interface{}, 0, len(ordered)+6)
	uargs = append(uargs, to.State().String(), holderID, holdID, expiresAt, bookingID, trainID)
	for _, n := range ordered {
		uargs = append(uargs, n)
	}
	if _, err := tx.ExecContext(ctx, update, uargs...); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSeat(r rowScanner) (SeatView, error) {
	var (
		number    string
		status    string
		holderID  sql.NullInt64
		holdID    sql.NullString
		expiresAt sql.NullTime
		bookingID sql.NullString
	)
	if err := r.Scan(&number, &status, &holderID, &holdID, &expiresAt, &bookingID); err != nil {
		return SeatView{}, err
	}
	v := SeatView{SeatNumber: number}
	switch status {
	case model.SeatHeld.String():
		v.Status = model.HeldBy(uint64(holderID.Int64), holdID.String, expiresAt.Time)
	case model.SeatBooked.String():
		v.Status = model.BookedUnder(bookingID.String)
	default:
		v.Status = model.Available()
	}
	return v, nil
}

// statusColumns flattens a SeatStatus into the nullable columns of
// train_seats.
func statusColumns(st model.SeatStatus) (holderID, holdID, expiresAt, bookingID interface{}) {
	switch st.State() {
	case model.SeatHeld:
		return st.HolderID(), st.HoldID(), st.ExpiresAt().UTC(), nil
	case model.SeatBooked:
		return nil, nil, nil, st.BookingID()
	}
	return nil, nil, nil, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// ensure both backends satisfy the interface
var (
	_ Store = (*Memory)(nil)
	_ Store = (*MySQL)(nil)
)
