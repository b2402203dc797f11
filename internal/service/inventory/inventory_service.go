package inventory

import (
	"context"
	"time"

	"github.com/mkravets/flightbook/internal/domain"
	"github.com/mkravets/flightbook/internal/repository"
)

// SeatLocker is a short-lived fencing lock in front of the durable
// conditional update (redis SetNX in production). It is optional; the SQL
// update alone already guarantees at most one holder.
type SeatLocker interface {
	AcquireSeatLock(ctx context.Context, seatID int64, ttl time.Duration) (bool, error)
	ReleaseSeatLock(ctx context.Context, seatID int64) error
}

// Store serves per-leg, per-class seat availability with atomic hold and
// release operations.
type Store struct {
	seats   repository.SeatRepository
	locks   SeatLocker
	holdTTL time.Duration
}

// findAttempts bounds how many candidate seats one hold request will try
// before reporting the cabin class as sold out.
const findAttempts = 3

func NewStore(seats repository.SeatRepository, locks SeatLocker, holdTTL time.Duration) *Store {
	return &Store{seats: seats, locks: locks, holdTTL: holdTTL}
}

// FindAndHold picks the first available seat of the requested class on the
// leg and holds it. A candidate lost to a concurrent caller is excluded and
// the next one is tried, up to findAttempts.
func (s *Store) FindAndHold(ctx context.Context, legID int64, class domain.CabinClass) (*domain.Seat, error) {
	var excluded []int64
	for i := 0; i < findAttempts; i++ {
		seat, err := s.seats.FindAvailable(ctx, legID, class, excluded)
		if err != nil {
			return nil, err
		}

		if s.locks != nil {
			ok, err := s.locks.AcquireSeatLock(ctx, seat.ID, s.holdTTL)
			if err != nil {
				return nil, err
			}
			if !ok {
				excluded = append(excluded, seat.ID)
				continue
			}
		}

		until := time.Now().Add(s.holdTTL)
		held, err := s.seats.HoldIfAvailable(ctx, seat.ID, until)
		if err != nil {
			s.unlock(ctx, seat.ID)
			return nil, err
		}
		if !held {
			s.unlock(ctx, seat.ID)
			excluded = append(excluded, seat.ID)
			continue
		}

		seat.IsAvailable = false
		seat.ReservedUntil = &until
		return seat, nil
	}
	return nil, domain.NoSeatsError{Class: class}
}

// Release returns seats to the pool and drops their fencing locks. It is
// idempotent: releasing an already-available seat is a no-op.
func (s *Store) Release(ctx context.Context, seatIDs ...int64) error {
	if len(seatIDs) == 0 {
		return nil
	}
	if err := s.seats.Release(ctx, seatIDs); err != nil {
		return err
	}
	for _, id := range seatIDs {
		s.unlock(ctx, id)
	}
	return nil
}

func (s *Store) SeatIDsForBookingOnLeg(ctx context.Context, bookingID, legID int64) ([]int64, error) {
	return s.seats.SeatIDsForBookingOnLeg(ctx, bookingID, legID)
}

// SweepExpiredHolds reclaims holds that expired without ever becoming part
// of a booking. Run periodically by the worker.
func (s *Store) SweepExpiredHolds(ctx context.Context) (int, error) {
	ids, err := s.seats.ReleaseExpiredHolds(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		s.unlock(ctx, id)
	}
	return len(ids), nil
}

func (s *Store) unlock(ctx context.Context, seatID int64) {
	if s.locks != nil {
		_ = s.locks.ReleaseSeatLock(ctx, seatID)
	}
}
