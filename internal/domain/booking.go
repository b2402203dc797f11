package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "Confirmed"
	BookingStatusCancelled BookingStatus = "Cancelled"
	BookingStatusModified  BookingStatus = "Modified"

	// BookingStatusCompleted is a read-time projection (first-leg departure
	// in the past); it is never written to storage.
	BookingStatusCompleted BookingStatus = "Completed"
)

type PassengerType string

const (
	PassengerAdult  PassengerType = "Adult"
	PassengerChild  PassengerType = "Child"
	PassengerInfant PassengerType = "Infant"
)

func (p PassengerType) Valid() bool {
	switch p {
	case PassengerAdult, PassengerChild, PassengerInfant:
		return true
	}
	return false
}

type Booking struct {
	ID               int64              `json:"id"`
	UserID           int64              `json:"user_id"`
	ItineraryID      int64              `json:"itinerary_id"`
	Status           BookingStatus      `json:"status"`
	TotalAmountCents int64              `json:"total_amount_cents"`
	PNR              string             `json:"pnr"`
	ETicket          string             `json:"e_ticket"`
	Passengers       []BookingPassenger `json:"passengers"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

type BookingPassenger struct {
	ID        int64         `json:"id"`
	BookingID int64         `json:"booking_id"`
	Name      string        `json:"name"`
	Age       int           `json:"age"`
	Type      PassengerType `json:"passenger_type"`
}

type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}
