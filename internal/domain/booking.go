package domain

import "time"

// Booking assigns one user to one room. The only entity this service mutates:
// ID and UserID are immutable after creation, RoomID changes via update.
type Booking struct {
	ID        int64
	UserID    int64
	RoomID    int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoomView is the public projection of a room returned to callers.
type RoomView struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	HotelID  int64  `json:"hotelId"`
}

// BookingView is the purpose-built read model for the booking-with-room view.
// Reads return this projection instead of stripping fields off a fetched row.
type BookingView struct {
	ID   int64    `json:"id"`
	Room RoomView `json:"Room"`
}
