package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/train-seat-reservation/internal/model"
)

// TrainRepo encapsulates database operations for the trains table.
// Trains are created once, by an administrator, together with their
// seat set; afterwards they are read-only input to the reservation
// core.
type TrainRepo struct {
	db *sql.DB
}

// NewTrainRepo returns a TrainRepo bound to the provided database.
func NewTrainRepo(db *sql.DB) *TrainRepo { return &TrainRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions
// spanning several repositories.
func (r *TrainRepo) DB() *sql.DB { return r.db }

const trainColumns = `id, number, name, source, destination, departs_at, arrives_at, price_per_seat_cents, seat_count, created_at`

// Create inserts a train and returns its generated ID.
func (r *TrainRepo) Create(ctx context.Context, t *model.Train) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO trains (number, name, source, destination, departs_at, arrives_at, price_per_seat_cents, seat_count)
		 VALUES (?,?,?,?,?,?,?,?)`,
		t.Number, t.Name, t.Source, t.Destination,
		t.DepartsAt.UTC(), t.ArrivesAt.UTC(), t.PricePerSeatCents, t.SeatCount)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// GetTrain fetches one train by ID.
func (r *TrainRepo) GetTrain(ctx context.Context, trainID uint64) (model.Train, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+trainColumns+` FROM trains WHERE id = ? LIMIT 1`, trainID)
	t, err := scanTrain(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Train{}, model.ErrTrainNotFound
	}
	return t, err
}

// Search lists trains matching the optional source/destination
// filters, soonest departure first.  Matching is case-insensitive on
// the full station name.
func (r *TrainRepo) Search(ctx context.Context, source, destination string) ([]model.Train, error) {
	query := `SELECT ` + trainColumns + ` FROM trains`
	var (
		conds []string
		args  []interface{}
	)
	if s := strings.TrimSpace(source); s != "" {
		conds = append(conds, "LOWER(source) = LOWER(?)")
		args = append(args, s)
	}
	if d := strings.TrimSpace(destination); d != "" {
		conds = append(conds, "LOWER(destination) = LOWER(?)")
		args = append(args, d)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY departs_at"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Train
	for rows.Next() {
		t, err := scanTrain(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTrain(r rowScanner) (model.Train, error) {
	var t model.Train
	err := r.Scan(&t.ID, &t.Number, &t.Name, &t.Source, &t.Destination,
		&t.DepartsAt, &t.ArrivesAt, &t.PricePerSeatCents, &t.SeatCount, &t.CreatedAt)
	return t, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}
