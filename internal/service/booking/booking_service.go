package booking

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mkravets/flightbook/internal/domain"
	"github.com/mkravets/flightbook/internal/kafka"
	"github.com/mkravets/flightbook/internal/repository"
	"github.com/mkravets/flightbook/internal/service/itinerary"
)

type BookingUseCase interface {
	Create(ctx context.Context, input CreateBookingInput) (*CreateBookingResult, error)
	Cancel(ctx context.Context, bookingID int64) (string, error)
	Modify(ctx context.Context, input ModifyBookingInput) (string, error)
	Get(ctx context.Context, bookingID int64) (*domain.BookingView, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.BookingView, error)
}

// SeatInventory is the engine's view of the seat inventory store.
type SeatInventory interface {
	FindAndHold(ctx context.Context, legID int64, class domain.CabinClass) (*domain.Seat, error)
	Release(ctx context.Context, seatIDs ...int64) error
	SeatIDsForBookingOnLeg(ctx context.Context, bookingID, legID int64) ([]int64, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CreateBookingInput struct {
	UserID           int64                    `json:"user_id"`
	TripType         domain.TripType          `json:"trip_type"`
	Segments         []itinerary.SegmentInput `json:"segments"`
	TotalAmountCents int64                    `json:"total_amount_cents"`
}

type CreateBookingResult struct {
	BookingID int64                `json:"booking_id"`
	PNR       string               `json:"pnr"`
	ETicket   string               `json:"e_ticket"`
	Status    domain.BookingStatus `json:"status"`
}

type ModifyBookingInput struct {
	BookingID      int64
	NewCabinClass  *domain.CabinClass
	NewFlightLegID *int64
}

// Engine drives a booking through its lifecycle. It is the only component
// that mutates seats, itineraries and bookings together.
type Engine struct {
	users              repository.UserRepository
	legs               repository.FlightLegRepository
	bookings           repository.BookingRepository
	builder            *itinerary.Builder
	inventory          SeatInventory
	producer           Producer
	notificationsTopic string
}

type EngineOption func(*Engine)

func WithNotificationsTopic(topic string) EngineOption {
	return func(e *Engine) {
		e.notificationsTopic = topic
	}
}

func NewEngine(
	users repository.UserRepository,
	legs repository.FlightLegRepository,
	bookings repository.BookingRepository,
	inv SeatInventory,
	producer Producer,
	opts ...EngineOption,
) *Engine {
	e := &Engine{
		users:     users,
		legs:      legs,
		bookings:  bookings,
		builder:   itinerary.NewBuilder(),
		inventory: inv,
		producer:  producer,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Create reserves one seat per segment, in order, and persists the booking
// as Confirmed. If any segment cannot be seated, every seat held so far is
// released before the error is returned.
func (e *Engine) Create(ctx context.Context, input CreateBookingInput) (*CreateBookingResult, error) {
	user, err := e.users.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("Booking failed: %w", err)
	}

	draft, err := e.builder.Build(input.TripType, input.Segments)
	if err != nil {
		return nil, fmt.Errorf("Booking failed: %w", err)
	}

	held := make([]int64, 0, len(draft.Segments))
	for _, seg := range draft.Segments {
		seat, err := e.inventory.FindAndHold(ctx, seg.FlightLegID, seg.Cabin)
		if err != nil {
			if relErr := e.inventory.Release(ctx, held...); relErr != nil {
				log.Printf("release held seats after failed create: %v", relErr)
			}
			return nil, fmt.Errorf("Booking failed: %w", err)
		}
		held = append(held, seat.ID)
	}

	booking := &domain.Booking{
		UserID:           input.UserID,
		Status:           domain.BookingStatusConfirmed,
		TotalAmountCents: input.TotalAmountCents,
		PNR:              newPNR(),
		ETicket:          newETicket(),
		Passengers:       draft.Passengers,
	}
	itin := &domain.Itinerary{
		UserID:   input.UserID,
		TripType: draft.TripType,
		Flights:  draft.Flights,
	}

	if err := e.bookings.Create(ctx, booking, itin, held); err != nil {
		if relErr := e.inventory.Release(ctx, held...); relErr != nil {
			log.Printf("release held seats after failed persist: %v", relErr)
		}
		return nil, fmt.Errorf("Booking failed: %w", err)
	}

	e.notify(ctx, domain.NotificationBookingConfirmed, user.Email, booking,
		fmt.Sprintf("Your booking %s is confirmed. E-ticket: %s.", booking.PNR, booking.ETicket))

	return &CreateBookingResult{
		BookingID: booking.ID,
		PNR:       booking.PNR,
		ETicket:   booking.ETicket,
		Status:    booking.Status,
	}, nil
}

// Cancel rejects the operation if any bound leg has already departed and
// releases only this booking's seats on success.
func (e *Engine) Cancel(ctx context.Context, bookingID int64) (string, error) {
	view, err := e.bookings.GetView(ctx, bookingID)
	if err != nil {
		return "", fmt.Errorf("Cancellation failed: %w", err)
	}

	now := time.Now()
	for _, seg := range view.Segments {
		if seg.Leg.DepartureTime.Before(now) {
			return "", fmt.Errorf("Cancellation failed: %w", domain.ErrDeparturePassed)
		}
	}
	if view.Status == domain.BookingStatusCancelled {
		return "", fmt.Errorf("Cancellation failed: %w", domain.ErrAlreadyCancelled)
	}

	seatIDs, err := e.bookings.Cancel(ctx, bookingID)
	if err != nil {
		return "", fmt.Errorf("Cancellation failed: %w", err)
	}

	// The transaction already returned the seats to the pool; this drops
	// their fencing locks.
	if err := e.inventory.Release(ctx, seatIDs...); err != nil {
		log.Printf("release locks for cancelled booking %d: %v", bookingID, err)
	}

	e.notifyUser(ctx, domain.NotificationBookingCancelled, view,
		fmt.Sprintf("Your booking %s has been cancelled.", view.PNR))

	return "Booking cancelled successfully.", nil
}

// Modify rebooks the first segment onto the target leg and cabin class. The
// newly chosen seat is held before the old ones are released, so the booking
// is never left without a seat on a leg that still has one.
func (e *Engine) Modify(ctx context.Context, input ModifyBookingInput) (string, error) {
	view, err := e.bookings.GetView(ctx, input.BookingID)
	if err != nil {
		return "", fmt.Errorf("Modification failed: %w", err)
	}
	if view.Status == domain.BookingStatusCancelled {
		return "", fmt.Errorf("Modification failed: %w", domain.ErrAlreadyCancelled)
	}

	now := time.Now()
	for _, seg := range view.Segments {
		leg, err := e.legs.GetByID(ctx, seg.Leg.ID)
		if err != nil {
			return "", fmt.Errorf("Modification failed: %w", err)
		}
		if leg.DepartureTime.Before(now) {
			return "", fmt.Errorf("Modification failed: %w", domain.ErrDeparturePassed)
		}
	}

	first := view.Segments[0]
	targetLeg := first.Leg.ID
	if input.NewFlightLegID != nil {
		targetLeg = *input.NewFlightLegID
	}
	targetClass := domain.CabinEconomy
	if len(first.Seats) > 0 {
		targetClass = first.Seats[0].Cabin
	}
	if input.NewCabinClass != nil {
		targetClass = *input.NewCabinClass
	}

	newSeat, err := e.inventory.FindAndHold(ctx, targetLeg, targetClass)
	if err != nil {
		return "", fmt.Errorf("Modification failed: %w", err)
	}

	oldSeatIDs, err := e.inventory.SeatIDsForBookingOnLeg(ctx, input.BookingID, first.Leg.ID)
	if err != nil {
		if relErr := e.inventory.Release(ctx, newSeat.ID); relErr != nil {
			log.Printf("release seat after failed modify: %v", relErr)
		}
		return "", fmt.Errorf("Modification failed: %w", err)
	}

	err = e.bookings.ApplyModification(ctx, repository.ModifyParams{
		BookingID:        input.BookingID,
		ItineraryID:      view.ItineraryID,
		SegmentNumber:    first.SegmentNumber,
		NewFlightLegID:   newSeat.FlightLegID,
		NewSeatID:        newSeat.ID,
		OldSeatIDs:       oldSeatIDs,
		TotalAmountCents: newSeat.PriceCents,
	})
	if err != nil {
		if relErr := e.inventory.Release(ctx, newSeat.ID); relErr != nil {
			log.Printf("release seat after failed modify: %v", relErr)
		}
		return "", fmt.Errorf("Modification failed: %w", err)
	}

	if err := e.inventory.Release(ctx, oldSeatIDs...); err != nil {
		log.Printf("release replaced seats for booking %d: %v", input.BookingID, err)
	}

	e.notifyUser(ctx, domain.NotificationBookingModified, view,
		fmt.Sprintf("Your booking %s has been modified. New seat: %s (%s).", view.PNR, newSeat.SeatNumber, newSeat.Cabin))

	return "Booking modified successfully.", nil
}

func (e *Engine) Get(ctx context.Context, bookingID int64) (*domain.BookingView, error) {
	return e.bookings.GetView(ctx, bookingID)
}

func (e *Engine) ListByUser(ctx context.Context, userID int64) ([]domain.BookingView, error) {
	return e.bookings.ListViewsByUser(ctx, userID)
}

func (e *Engine) notifyUser(ctx context.Context, kind domain.NotificationKind, view *domain.BookingView, message string) {
	user, err := e.users.GetByID(ctx, view.UserID)
	if err != nil {
		log.Printf("resolve user %d for notification: %v", view.UserID, err)
		return
	}
	e.notify(ctx, kind, user.Email, &view.Booking, message)
}

// notify records the notification and publishes it. Failures are logged and
// swallowed: the lifecycle transition has already committed.
func (e *Engine) notify(ctx context.Context, kind domain.NotificationKind, email string, b *domain.Booking, message string) {
	record := &domain.Notification{
		ID:        uuid.New(),
		BookingID: b.ID,
		Kind:      kind,
		Email:     email,
		Payload:   message,
	}
	if err := e.bookings.RecordNotification(ctx, record); err != nil {
		log.Printf("record %s notification for booking %d: %v", kind, b.ID, err)
	}

	if e.producer == nil || e.notificationsTopic == "" {
		return
	}
	event := kafka.NotificationEvent{
		Kind:      string(kind),
		BookingID: b.ID,
		PNR:       b.PNR,
		ETicket:   b.ETicket,
		Email:     email,
		Message:   message,
		At:        time.Now(),
	}
	if err := e.producer.Publish(ctx, e.notificationsTopic, b.PNR, event); err != nil {
		log.Printf("publish %s notification for booking %d: %v", kind, b.ID, err)
	}
}

func newPNR() string {
	return "PNR-" + randHex(6)
}

func newETicket() string {
	return "E-TKT-" + randHex(10)
}

// randHex returns n uppercase hex characters. Uniqueness is not enforced
// against existing codes; collisions are accepted as negligible.
func randHex(n int) string {
	buf := make([]byte, (n+1)/2)
	_, _ = rand.Read(buf)
	return strings.ToUpper(hex.EncodeToString(buf))[:n]
}

var _ BookingUseCase = (*Engine)(nil)
