package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

type stubReader struct {
	messages []kafka.Message
	next     int
}

func (r *stubReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if r.next >= len(r.messages) {
		return kafka.Message{}, io.EOF
	}
	msg := r.messages[r.next]
	r.next++
	return msg, nil
}

func (r *stubReader) Close() error { return nil }

func notificationMessage(t *testing.T, event NotificationEvent) kafka.Message {
	t.Helper()
	value, err := json.Marshal(event)
	assert.NoError(t, err)
	return kafka.Message{Value: value}
}

func TestConsumer_Consume_DeliversDecodedEvents(t *testing.T) {
	consumer := &Consumer{reader: &stubReader{messages: []kafka.Message{
		notificationMessage(t, NotificationEvent{Kind: "BookingConfirmed", BookingID: 7, PNR: "PNR-0A1B2C"}),
		notificationMessage(t, NotificationEvent{Kind: "BookingCancelled", BookingID: 8, PNR: "PNR-1B2C3D"}),
	}}}

	var got []NotificationEvent
	err := consumer.Consume(context.Background(), func(ctx context.Context, event NotificationEvent) error {
		got = append(got, event)
		return nil
	})

	assert.ErrorIs(t, err, io.EOF)
	assert.Len(t, got, 2)
	assert.Equal(t, int64(7), got[0].BookingID)
	assert.Equal(t, "BookingCancelled", got[1].Kind)
}

func TestConsumer_Consume_SkipsMalformedAndHandlerFailures(t *testing.T) {
	consumer := &Consumer{reader: &stubReader{messages: []kafka.Message{
		{Value: []byte("not json")},
		notificationMessage(t, NotificationEvent{Kind: "BookingConfirmed", BookingID: 7}),
		notificationMessage(t, NotificationEvent{Kind: "BookingModified", BookingID: 8}),
	}}}

	var handled []int64
	err := consumer.Consume(context.Background(), func(ctx context.Context, event NotificationEvent) error {
		handled = append(handled, event.BookingID)
		if event.BookingID == 7 {
			return errors.New("smtp down")
		}
		return nil
	})

	// The loop outlives both the malformed payload and the failed handler.
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []int64{7, 8}, handled)
}
