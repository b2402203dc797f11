package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// NotificationEvent is published to the notifications topic for every
// booking lifecycle transition. The worker consumes it and sends the
// user-facing message.
type NotificationEvent struct {
	Kind      string    `json:"kind"`
	BookingID int64     `json:"booking_id"`
	PNR       string    `json:"pnr"`
	ETicket   string    `json:"e_ticket,omitempty"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	At        time.Time `json:"at"`
}

// StatusEvent is published to the flight-status topic, keyed by leg id.
// Subscriber fan-out lives outside this service.
type StatusEvent struct {
	FlightLegID int64     `json:"flight_leg_id"`
	Status      string    `json:"status"`
	At          time.Time `json:"at"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
