package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventBookingCreated     EventType = "booking_created"
	EventBookingRoomChanged EventType = "booking_room_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	BookingID int64       `json:"booking_id"`
	UserID    int64       `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// BookingCreatedPayload payload.
type BookingCreatedPayload struct {
	RoomID  int64 `json:"room_id"`
	HotelID int64 `json:"hotel_id,omitempty"`
}

// BookingRoomChangedPayload payload.
type BookingRoomChangedPayload struct {
	OldRoomID int64 `json:"old_room_id"`
	NewRoomID int64 `json:"new_room_id"`
}
