package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkravets/flightbook/internal/domain"
)

// ModifyParams carries everything a modification writes in one transaction:
// the seat linkage swap, the segment rebind, and the booking update.
type ModifyParams struct {
	BookingID        int64
	ItineraryID      int64
	SegmentNumber    int
	NewFlightLegID   int64
	NewSeatID        int64
	OldSeatIDs       []int64
	TotalAmountCents int64
}

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking, itin *domain.Itinerary, seatIDs []int64) error
	GetView(ctx context.Context, bookingID int64) (*domain.BookingView, error)
	ListViewsByUser(ctx context.Context, userID int64) ([]domain.BookingView, error)
	Cancel(ctx context.Context, bookingID int64) ([]int64, error)
	ApplyModification(ctx context.Context, p ModifyParams) error
	RecordNotification(ctx context.Context, n *domain.Notification) error
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

// Create persists the itinerary, its flights, the booking, its deduplicated
// passengers and the seat linkage in a single transaction. Seats themselves
// are already held at this point.
func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking, itin *domain.Itinerary, seatIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `INSERT INTO itineraries (user_id, trip_type) VALUES ($1, $2) RETURNING id, created_at`,
		itin.UserID, itin.TripType).Scan(&itin.ID, &itin.CreatedAt); err != nil {
		return err
	}
	for i := range itin.Flights {
		f := &itin.Flights[i]
		f.ItineraryID = itin.ID
		if err := tx.QueryRow(ctx, `INSERT INTO itinerary_flights (itinerary_id, segment_number, flight_leg_id) VALUES ($1, $2, $3) RETURNING id`,
			itin.ID, f.SegmentNumber, f.FlightLegID).Scan(&f.ID); err != nil {
			return err
		}
	}

	booking.ItineraryID = itin.ID
	if err := tx.QueryRow(ctx, `INSERT INTO bookings (user_id, itinerary_id, status, total_amount_cents, pnr, e_ticket)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		booking.UserID, booking.ItineraryID, booking.Status, booking.TotalAmountCents, booking.PNR, booking.ETicket).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return err
	}

	for i := range booking.Passengers {
		p := &booking.Passengers[i]
		p.BookingID = booking.ID
		if err := tx.QueryRow(ctx, `INSERT INTO booking_passengers (booking_id, name, age, passenger_type) VALUES ($1, $2, $3, $4) RETURNING id`,
			booking.ID, p.Name, p.Age, p.Type).Scan(&p.ID); err != nil {
			return err
		}
	}

	for _, seatID := range seatIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO booking_seats (booking_id, seat_id) VALUES ($1, $2)`, booking.ID, seatID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetView(ctx context.Context, bookingID int64) (*domain.BookingView, error) {
	row := r.db.QueryRow(ctx, `SELECT b.id, b.user_id, b.itinerary_id, b.status, b.total_amount_cents, b.pnr, b.e_ticket, b.created_at, b.updated_at, i.trip_type
		FROM bookings b JOIN itineraries i ON i.id = b.itinerary_id WHERE b.id=$1`, bookingID)

	var v domain.BookingView
	if err := row.Scan(&v.ID, &v.UserID, &v.ItineraryID, &v.Status, &v.TotalAmountCents, &v.PNR, &v.ETicket, &v.CreatedAt, &v.UpdatedAt, &v.TripType); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}

	passengers, err := r.passengers(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	v.Passengers = passengers

	segments, err := r.segments(ctx, v.ItineraryID)
	if err != nil {
		return nil, err
	}

	seatsByLeg, err := r.seatsByLeg(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	for i := range segments {
		segments[i].Seats = seatsByLeg[segments[i].Leg.ID]
	}
	v.Segments = segments

	return &v, nil
}

func (r *PGBookingRepository) ListViewsByUser(ctx context.Context, userID int64) ([]domain.BookingView, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM bookings WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	views := make([]domain.BookingView, 0, len(ids))
	for _, id := range ids {
		v, err := r.GetView(ctx, id)
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

// Cancel marks the booking Cancelled, detaches its seat linkage and returns
// the seats to the pool in one transaction. Dropping the booking_seats rows
// here keeps the expired-hold sweep honest: a seat that only ever belonged to
// a cancelled booking must not be treated as booked. The freed seat ids are
// returned so the caller can drop any fencing locks.
func (r *PGBookingRepository) Cancel(ctx context.Context, bookingID int64) ([]int64, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2`,
		domain.BookingStatusCancelled, bookingID)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrBookingNotFound
	}

	rows, err := tx.Query(ctx, `DELETE FROM booking_seats WHERE booking_id=$1 RETURNING seat_id`, bookingID)
	if err != nil {
		return nil, err
	}
	seatIDs, err := scanIDs(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	if len(seatIDs) > 0 {
		if _, err := tx.Exec(ctx, `UPDATE seats SET is_available=true, reserved_until=NULL WHERE id = ANY($1)`, seatIDs); err != nil {
			return nil, err
		}
	}

	return seatIDs, tx.Commit(ctx)
}

func (r *PGBookingRepository) ApplyModification(ctx context.Context, p ModifyParams) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if len(p.OldSeatIDs) > 0 {
		if _, err := tx.Exec(ctx, `DELETE FROM booking_seats WHERE booking_id=$1 AND seat_id = ANY($2)`, p.BookingID, p.OldSeatIDs); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(ctx, `INSERT INTO booking_seats (booking_id, seat_id) VALUES ($1, $2)`, p.BookingID, p.NewSeatID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE itinerary_flights SET flight_leg_id=$1 WHERE itinerary_id=$2 AND segment_number=$3`,
		p.NewFlightLegID, p.ItineraryID, p.SegmentNumber); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE bookings SET total_amount_cents=$1, status=$2, updated_at=now() WHERE id=$3`,
		p.TotalAmountCents, domain.BookingStatusModified, p.BookingID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) RecordNotification(ctx context.Context, n *domain.Notification) error {
	row := r.db.QueryRow(ctx, `INSERT INTO notifications (id, booking_id, kind, recipient_email, payload) VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
		n.ID, n.BookingID, n.Kind, n.Email, n.Payload)
	return row.Scan(&n.CreatedAt)
}

func (r *PGBookingRepository) passengers(ctx context.Context, bookingID int64) ([]domain.BookingPassenger, error) {
	rows, err := r.db.Query(ctx, `SELECT id, booking_id, name, age, passenger_type FROM booking_passengers WHERE booking_id=$1 ORDER BY id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var passengers []domain.BookingPassenger
	for rows.Next() {
		var p domain.BookingPassenger
		if err := rows.Scan(&p.ID, &p.BookingID, &p.Name, &p.Age, &p.Type); err != nil {
			return nil, err
		}
		passengers = append(passengers, p)
	}
	return passengers, rows.Err()
}

func (r *PGBookingRepository) segments(ctx context.Context, itineraryID int64) ([]domain.SegmentView, error) {
	rows, err := r.db.Query(ctx, `SELECT itf.segment_number,
			l.id, l.flight_number,
			o.code, o.name, o.city, o.country,
			d.code, d.name, d.city, d.country,
			l.departure_time, l.arrival_time, l.duration_minutes, l.layover_minutes,
			l.created_at, l.updated_at,
			su.id, su.status, su.created_at
		FROM itinerary_flights itf
		JOIN flight_legs l ON l.id = itf.flight_leg_id
		JOIN airports o ON o.code = l.origin_code
		JOIN airports d ON d.code = l.destination_code
		LEFT JOIN LATERAL (
			SELECT id, status, created_at FROM flight_status_updates
			WHERE flight_leg_id = l.id ORDER BY created_at DESC, id DESC LIMIT 1
		) su ON true
		WHERE itf.itinerary_id=$1 ORDER BY itf.segment_number`, itineraryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var segments []domain.SegmentView
	for rows.Next() {
		var s domain.SegmentView
		l := &s.Leg
		var suID *int64
		var suStatus *string
		var suAt *time.Time
		if err := rows.Scan(&s.SegmentNumber,
			&l.ID, &l.FlightNumber,
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
		segments = append(segments, s)
	}
	return segments, rows.Err()
}

func (r *PGBookingRepository) seatsByLeg(ctx context.Context, bookingID int64) (map[int64][]domain.Seat, error) {
	rows, err := r.db.Query(ctx, `SELECT s.id, s.flight_leg_id, s.cabin_class, s.seat_number, s.is_available, s.price_cents, s.discount_cents, s.reserved_until
		FROM seats s JOIN booking_seats bs ON bs.seat_id = s.id
		WHERE bs.booking_id=$1 ORDER BY s.id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make(map[int64][]domain.Seat)
	for rows.Next() {
		var s domain.Seat
		if err := rows.Scan(&s.ID, &s.FlightLegID, &s.Cabin, &s.SeatNumber, &s.IsAvailable, &s.PriceCents, &s.DiscountCents, &s.ReservedUntil); err != nil {
			return nil, err
		}
		seats[s.FlightLegID] = append(seats[s.FlightLegID], s)
	}
	return seats, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
