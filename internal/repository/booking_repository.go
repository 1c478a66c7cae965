package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/train-seat-reservation/internal/model"
)

// BookingRepo persists the immutable booking records.  Bookings are
// inserted exactly once by the booking coordinator and never updated;
// there is deliberately no update or delete method here.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the provided database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateBooking inserts the booking row plus one booking_seats row
// per seat, inside a single transaction.
func (r *BookingRepo) CreateBooking(ctx context.Context, b model.Booking) error {
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
		`INSERT INTO bookings
		   (id, train_id, user_id, hold_id, passenger_name, passenger_age, passenger_gender,
		    total_amount_cents, status, payment_ref, created_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		b.ID, b.TrainID, b.UserID, b.HoldID,
		b.Passenger.Name, b.Passenger.Age, string(b.Passenger.Gender),
		b.TotalAmountCents, string(b.Status), b.PaymentRef, b.CreatedAt.UTC()); err != nil {
		return err
	}

	query := `INSERT INTO booking_seats (booking_id, seat_number) VALUES `
	args := make([]interface{}, 0, len(b.SeatNumbers)*2)
	for i, n := range b.SeatNumbers {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, b.ID, n)
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

const bookingColumns = `id, train_id, user_id, hold_id, passenger_name, passenger_age, passenger_gender,
       total_amount_cents, status, payment_ref, created_at`

// GetBookingByHold returns the booking created from the given hold,
// or nil when none exists.  The commit path uses this for
// idempotency, so absence is not an error.
func (r *BookingRepo) GetBookingByHold(ctx context.Context, holdID string) (*model.Booking, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE hold_id = ? LIMIT 1`, holdID)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.attachSeats(ctx, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBookingsByUser returns all bookings owned by a user, newest
// first, with their seat sets attached.
func (r *BookingRepo) ListBookingsByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := r.attachSeats(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *BookingRepo) attachSeats(ctx context.Context, b *model.Booking) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seat_number FROM booking_seats WHERE booking_id = ? ORDER BY seat_number`, b.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return err
		}
		b.SeatNumbers = append(b.SeatNumbers, n)
	}
	return rows.Err()
}

func scanBooking(r rowScanner) (model.Booking, error) {
	var (
		b      model.Booking
		gender string
		status string
	)
	err := r.Scan(&b.ID, &b.TrainID, &b.UserID, &b.HoldID,
		&b.Passenger.Name, &b.Passenger.Age, &gender,
		&b.TotalAmountCents, &status, &b.PaymentRef, &b.CreatedAt)
	if err != nil {
		return model.Booking{}, err
	}
	b.Passenger.Gender = model.Gender(gender)
	b.Status = model.BookingStatus(status)
	return b, nil
}
