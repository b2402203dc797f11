package domain

import "time"

// BookingView is the nested read graph returned by get/list. It carries the
// stored status; EffectiveStatus derives Completed at read time.
type BookingView struct {
	Booking
	TripType TripType      `json:"trip_type"`
	Segments []SegmentView `json:"segments"`
}

type SegmentView struct {
	SegmentNumber int       `json:"segment_number"`
	Leg           FlightLeg `json:"flight_leg"`
	Seats         []Seat    `json:"seats"`
}

// EffectiveStatus projects Completed for bookings whose first leg has already
// departed. Completed is never stored, so stored state cannot drift from the
// clock.
func (v *BookingView) EffectiveStatus(now time.Time) BookingStatus {
	switch v.Status {
	case BookingStatusConfirmed, BookingStatusModified:
		if len(v.Segments) > 0 && v.Segments[0].Leg.DepartureTime.Before(now) {
			return BookingStatusCompleted
		}
	}
	return v.Status
}
