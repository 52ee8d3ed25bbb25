package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusPublishSubscribe(t *testing.T) {
	bus := NewEventBus()

	var got []*Event
	bus.Subscribe(EventBookingCreated, func(event *Event) error {
		got = append(got, event)
		return nil
	})

	bus.Publish(&Event{Type: EventBookingCreated, Payload: []byte(`{}`)})
	bus.Publish(&Event{Type: EventBookingDeleted, Payload: []byte(`{}`)})

	require.Len(t, got, 1)
	assert.Equal(t, EventBookingCreated, got[0].Type)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestEventBusPublishJSON(t *testing.T) {
	bus := NewEventBus()

	var payloads []BookingEventPayload
	bus.Subscribe(EventBookingUpdated, func(event *Event) error {
		var p BookingEventPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			return err
		}
		payloads = append(payloads, p)
		return nil
	})

	err := bus.PublishJSON(EventBookingUpdated, BookingEventPayload{
		BookingID: "b-1",
		RoomID:    "r-1",
		Date:      "2026-03-01",
		StartTime: "10:00",
		EndTime:   "11:00",
		Status:    "booked",
	})
	require.NoError(t, err)

	require.Len(t, payloads, 1)
	assert.Equal(t, "b-1", payloads[0].BookingID)
	assert.Equal(t, "10:00", payloads[0].StartTime)
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()

	first, second := 0, 0
	bus.Subscribe(EventBookingDeleted, func(*Event) error { first++; return nil })
	bus.Subscribe(EventBookingDeleted, func(*Event) error { second++; return nil })

	bus.Publish(&Event{Type: EventBookingDeleted})

	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
}

func TestEventBusNilBusPublishJSON(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventBookingCreated, BookingEventPayload{}))
}
