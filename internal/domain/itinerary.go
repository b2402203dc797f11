package domain

import "time"

type TripType string

const (
	TripOneWay    TripType = "one_way"
	TripRoundTrip TripType = "round_trip"
	TripMultiCity TripType = "multi_city"
)

func (t TripType) Valid() bool {
	switch t {
	case TripOneWay, TripRoundTrip, TripMultiCity:
		return true
	}
	return false
}

// Itinerary is an ordered, non-empty sequence of flight legs owned by one
// user. segment_number is 1-based and strictly increasing in input order.
type Itinerary struct {
	ID        int64             `json:"id"`
	UserID    int64             `json:"user_id"`
	TripType  TripType          `json:"trip_type"`
	Flights   []ItineraryFlight `json:"flights"`
	CreatedAt time.Time         `json:"created_at"`
}

type ItineraryFlight struct {
	ID            int64 `json:"id"`
	ItineraryID   int64 `json:"itinerary_id"`
	SegmentNumber int   `json:"segment_number"`
	FlightLegID   int64 `json:"flight_leg_id"`
}
