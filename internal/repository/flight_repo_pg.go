package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkravets/flightbook/internal/domain"
)

type FlightLegRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.FlightLeg, error)
	ListByRoute(ctx context.Context, origin, destination string) ([]domain.FlightLeg, error)
	AppendStatus(ctx context.Context, legID int64, status string) (*domain.StatusUpdate, error)
}

type PGFlightLegRepository struct {
	db *pgxpool.Pool
}

func NewFlightLegRepository(db *pgxpool.Pool) FlightLegRepository {
	return &PGFlightLegRepository{db: db}
}

const legQuery = `SELECT l.id, l.flight_number,
		o.code, o.name, o.city, o.country,
		d.code, d.name, d.city, d.country,
		l.departure_time, l.arrival_time, l.duration_minutes, l.layover_minutes,
		l.created_at, l.updated_at,
		su.id, su.status, su.created_at
	FROM flight_legs l
	JOIN airports o ON o.code = l.origin_code
	JOIN airports d ON d.code = l.destination_code
	LEFT JOIN LATERAL (
		SELECT id, status, created_at FROM flight_status_updates
		WHERE flight_leg_id = l.id ORDER BY created_at DESC, id DESC LIMIT 1
	) su ON true`

func (r *PGFlightLegRepository) GetByID(ctx context.Context, id int64) (*domain.FlightLeg, error) {
	row := r.db.QueryRow(ctx, legQuery+` WHERE l.id=$1`, id)
	var l domain.FlightLeg
	var suID *int64
	var suStatus *string
	var suAt *time.Time
	if err := row.Scan(&l.ID, &l.FlightNumber,
		&l.Origin.Code, &l.Origin.Name, &l.Origin.City, &l.Origin.Country,
		&l.Destination.Code, &l.Destination.Name, &l.Destination.City, &l.Destination.Country,
		&l.DepartureTime, &l.ArrivalTime, &l.DurationMinutes, &l.LayoverMinutes,
		&l.CreatedAt, &l.UpdatedAt,
		&suID, &suStatus, &suAt); err != nil {
		return nil, err
	}
	if suID != nil {
		l.LatestStatus = &domain.StatusUpdate{ID: *suID, FlightLegID: l.ID, Status: *suStatus, CreatedAt: *suAt}
	}
	return &l, nil
}

func (r *PGFlightLegRepository) ListByRoute(ctx context.Context, origin, destination string) ([]domain.FlightLeg, error) {
	rows, err := r.db.Query(ctx, legQuery+` WHERE l.origin_code=$1 AND l.destination_code=$2 ORDER BY l.departure_time`, origin, destination)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	legs := make([]domain.FlightLeg, 0)
	for rows.Next() {
		var l domain.FlightLeg
		var suID *int64
		var suStatus *string
		var suAt *time.Time
		if err := rows.Scan(&l.ID, &l.FlightNumber,
			&l.Origin.Code, &l.Origin.Name, &l.Origin.City, &l.Origin.Country,
			&l.Destination.Code, &l.Destination.Name, &l.Destination.City, &l.Destination.Country,
			&l.DepartureTime, &l.ArrivalTime, &l.DurationMinutes, &l.LayoverMinutes,
			&l.CreatedAt, &l.UpdatedAt,
			&suID, &suStatus, &suAt); err != nil {
			return nil, err
		}
		if suID != nil {
			l.LatestStatus = &domain.StatusUpdate{ID: *suID, FlightLegID: l.ID, Status: *suStatus, CreatedAt: *suAt}
		}
		legs = append(legs, l)
	}
	return legs, rows.Err()
}

func (r *PGFlightLegRepository) AppendStatus(ctx context.Context, legID int64, status string) (*domain.StatusUpdate, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO flight_status_updates (flight_leg_id, status) VALUES ($1, $2) RETURNING id, created_at`, legID, status)
	su := domain.StatusUpdate{FlightLegID: legID, Status: status}
	if err := row.Scan(&su.ID, &su.CreatedAt); err != nil {
		return nil, err
	}
	return &su, nil
}

var _ FlightLegRepository = (*PGFlightLegRepository)(nil)
