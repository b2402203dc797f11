package domain

import "time"

type CabinClass string

const (
	CabinEconomy  CabinClass = "Economy"
	CabinBusiness CabinClass = "Business"
	CabinFirst    CabinClass = "First"
)

func (c CabinClass) Valid() bool {
	switch c {
	case CabinEconomy, CabinBusiness, CabinFirst:
		return true
	}
	return false
}

// Seat is one sellable seat on a flight leg. An unavailable seat is either
// attached to a booking via booking_seats or mid-hold with reserved_until in
// the future.
type Seat struct {
	ID            int64      `json:"id"`
	FlightLegID   int64      `json:"flight_leg_id"`
	Cabin         CabinClass `json:"cabin_class"`
	SeatNumber    string     `json:"seat_number"`
	IsAvailable   bool       `json:"is_available"`
	PriceCents    int64      `json:"price_cents"`
	DiscountCents *int64     `json:"discount_cents,omitempty"`
	ReservedUntil *time.Time `json:"reserved_until,omitempty"`
}
