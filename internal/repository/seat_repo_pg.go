package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkravets/flightbook/internal/domain"
)

type SeatRepository interface {
	FindAvailable(ctx context.Context, legID int64, class domain.CabinClass, excluding []int64) (*domain.Seat, error)
	HoldIfAvailable(ctx context.Context, seatID int64, until time.Time) (bool, error)
	Release(ctx context.Context, seatIDs []int64) error
	SeatIDsForBookingOnLeg(ctx context.Context, bookingID, legID int64) ([]int64, error)
	ReleaseExpiredHolds(ctx context.Context, now time.Time) ([]int64, error)
}

type PGSeatRepository struct {
	db *pgxpool.Pool
}

func NewSeatRepository(db *pgxpool.Pool) SeatRepository {
	return &PGSeatRepository{db: db}
}

const seatColumns = `id, flight_leg_id, cabin_class, seat_number, is_available, price_cents, discount_cents, reserved_until`

// FindAvailable picks the lowest seat number among available seats of the
// requested class, so the selection is deterministic.
func (r *PGSeatRepository) FindAvailable(ctx context.Context, legID int64, class domain.CabinClass, excluding []int64) (*domain.Seat, error) {
	if excluding == nil {
		excluding = []int64{}
	}
	row := r.db.QueryRow(ctx, `SELECT `+seatColumns+` FROM seats
		WHERE flight_leg_id=$1 AND cabin_class=$2 AND is_available AND NOT (id = ANY($3))
		ORDER BY seat_number LIMIT 1`, legID, class, excluding)
	var s domain.Seat
	if err := row.Scan(&s.ID, &s.FlightLegID, &s.Cabin, &s.SeatNumber, &s.IsAvailable, &s.PriceCents, &s.DiscountCents, &s.ReservedUntil); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NoSeatsError{Class: class}
		}
		return nil, err
	}
	return &s, nil
}

// HoldIfAvailable flips availability only when the seat is still free. The
// conditional update is what makes concurrent holds on the same seat id
// resolve to at most one winner.
func (r *PGSeatRepository) HoldIfAvailable(ctx context.Context, seatID int64, until time.Time) (bool, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE seats SET is_available=false, reserved_until=$2 WHERE id=$1 AND is_available`, seatID, until)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *PGSeatRepository) Release(ctx context.Context, seatIDs []int64) error {
	if len(seatIDs) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `UPDATE seats SET is_available=true, reserved_until=NULL WHERE id = ANY($1)`, seatIDs)
	return err
}

func (r *PGSeatRepository) SeatIDsForBookingOnLeg(ctx context.Context, bookingID, legID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT bs.seat_id FROM booking_seats bs
		JOIN seats s ON s.id = bs.seat_id
		WHERE bs.booking_id=$1 AND s.flight_leg_id=$2`, bookingID, legID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

// ReleaseExpiredHolds returns to the pool any hold that expired without ever
// becoming part of a booking. Seats linked through booking_seats are left
// alone.
func (r *PGSeatRepository) ReleaseExpiredHolds(ctx context.Context, now time.Time) ([]int64, error) {
	rows, err := r.db.Query(ctx, `UPDATE seats SET is_available=true, reserved_until=NULL
		WHERE is_available=false AND reserved_until IS NOT NULL AND reserved_until < $1
		AND NOT EXISTS (SELECT 1 FROM booking_seats bs WHERE bs.seat_id = seats.id)
		RETURNING id`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

func scanIDs(rows pgx.Rows) ([]int64, error) {
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var _ SeatRepository = (*PGSeatRepository)(nil)
