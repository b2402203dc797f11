package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationKind string

const (
	NotificationBookingConfirmed NotificationKind = "BookingConfirmed"
	NotificationBookingCancelled NotificationKind = "BookingCancelled"
	NotificationBookingModified  NotificationKind = "BookingModified"
)

// Notification is the durable record of a dispatched lifecycle message.
// Delivery itself is best-effort and never fails the lifecycle operation.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	BookingID int64            `json:"booking_id"`
	Kind      NotificationKind `json:"kind"`
	Email     string           `json:"email"`
	Payload   string           `json:"payload"`
	CreatedAt time.Time        `json:"created_at"`
}
