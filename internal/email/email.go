package email

import (
	"context"
	"log"

	"github.com/mkravets/flightbook/internal/kafka"
)

// Sender delivers lifecycle notifications to the user. The transport here is
// a stub; the worker treats delivery as best-effort either way.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.NotificationEvent) error {
	log.Printf("send %s email to %s for booking %s: %s", event.Kind, event.Email, event.PNR, event.Message)
	return nil
}
