package dto

// BookingRequest payload for create and update.
type BookingRequest struct {
	RoomID int64 `json:"roomId"`
}

// BookingIDResponse is the success payload of create and update.
type BookingIDResponse struct {
	BookingID int64 `json:"bookingId"`
}

// RoomResponse mirrors the room fields exposed by the booking view.
type RoomResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	HotelID  int64  `json:"hotelId"`
}

// BookingViewResponse is the booking-with-room read payload.
type BookingViewResponse struct {
	ID   int64        `json:"id"`
	Room RoomResponse `json:"Room"`
}
