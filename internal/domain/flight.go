package domain

import "time"

// Airport is seeded reference data and never mutated afterwards.
type Airport struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// FlightLeg is one scheduled segment between two airports. Departure and
// arrival are immutable after scheduling; status history is append-only.
type FlightLeg struct {
	ID              int64         `json:"id"`
	FlightNumber    string        `json:"flight_number"`
	Origin          Airport       `json:"origin"`
	Destination     Airport       `json:"destination"`
	DepartureTime   time.Time     `json:"departure_time"`
	ArrivalTime     time.Time     `json:"arrival_time"`
	DurationMinutes int           `json:"duration_minutes"`
	LayoverMinutes  *int          `json:"layover_minutes,omitempty"`
	LatestStatus    *StatusUpdate `json:"latest_status,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

type StatusUpdate struct {
	ID          int64     `json:"id"`
	FlightLegID int64     `json:"flight_leg_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
