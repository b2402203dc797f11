package itinerary

import (
	"github.com/mkravets/flightbook/internal/domain"
)

type PassengerInput struct {
	Name string               `json:"name"`
	Age  int                  `json:"age"`
	Type domain.PassengerType `json:"passenger_type"`
}

type SegmentInput struct {
	FlightLegID int64             `json:"flight_leg_id"`
	Cabin       domain.CabinClass `json:"cabin_class"`
	Passengers  []PassengerInput  `json:"passengers"`
}

// Draft is a validated, not-yet-persisted itinerary: segments numbered in
// input order plus the deduplicated passenger roster across all segments.
type Draft struct {
	TripType   domain.TripType
	Segments   []SegmentInput
	Flights    []domain.ItineraryFlight
	Passengers []domain.BookingPassenger
}

type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// Build validates the request shape and assembles the draft. Flight leg
// existence is not checked here; a missing leg surfaces as a seat-not-found
// error when the inventory store is consulted.
func (b *Builder) Build(tripType domain.TripType, segments []SegmentInput) (*Draft, error) {
	if len(segments) == 0 {
		return nil, domain.ErrNoSegments
	}
	if !tripType.Valid() {
		return nil, domain.ErrInvalidTripType
	}

	draft := &Draft{TripType: tripType, Segments: segments}
	for i, seg := range segments {
		if !seg.Cabin.Valid() {
			return nil, domain.ErrInvalidCabinClass
		}
		draft.Flights = append(draft.Flights, domain.ItineraryFlight{
			SegmentNumber: i + 1,
			FlightLegID:   seg.FlightLegID,
		})
	}

	draft.Passengers = dedupPassengers(segments)
	if len(draft.Passengers) == 0 {
		return nil, domain.ErrNoPassengers
	}
	for _, p := range draft.Passengers {
		if !p.Type.Valid() {
			return nil, domain.ErrInvalidPassengerType
		}
	}
	return draft, nil
}

type passengerKey struct {
	name  string
	age   int
	ptype domain.PassengerType
}

// dedupPassengers collapses the roster to one entry per (name, age, type)
// triple across all segments, preserving first-seen order.
func dedupPassengers(segments []SegmentInput) []domain.BookingPassenger {
	seen := make(map[passengerKey]bool)
	var roster []domain.BookingPassenger
	for _, seg := range segments {
		for _, p := range seg.Passengers {
			key := passengerKey{name: p.Name, age: p.Age, ptype: p.Type}
			if seen[key] {
				continue
			}
			seen[key] = true
			roster = append(roster, domain.BookingPassenger{Name: p.Name, Age: p.Age, Type: p.Type})
		}
	}
	return roster
}
