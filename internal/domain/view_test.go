package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func viewWithDeparture(status BookingStatus, departure time.Time) *BookingView {
	return &BookingView{
		Booking:  Booking{ID: 1, Status: status},
		TripType: TripOneWay,
		Segments: []SegmentView{
			{SegmentNumber: 1, Leg: FlightLeg{ID: 10, DepartureTime: departure}},
		},
	}
}

func TestBookingView_EffectiveStatus(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name      string
		stored    BookingStatus
		departure time.Time
		want      BookingStatus
	}{
		{"confirmed before departure stays confirmed", BookingStatusConfirmed, future, BookingStatusConfirmed},
		{"confirmed after departure reads completed", BookingStatusConfirmed, past, BookingStatusCompleted},
		{"modified after departure reads completed", BookingStatusModified, past, BookingStatusCompleted},
		{"cancelled never completes", BookingStatusCancelled, past, BookingStatusCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := viewWithDeparture(tt.stored, tt.departure)
			assert.Equal(t, tt.want, view.EffectiveStatus(now))
		})
	}
}

func TestBookingView_EffectiveStatus_NoSegments(t *testing.T) {
	view := &BookingView{Booking: Booking{Status: BookingStatusConfirmed}}
	assert.Equal(t, BookingStatusConfirmed, view.EffectiveStatus(time.Now()))
}
