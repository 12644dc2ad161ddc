package domain

// Hotel groups rooms. Inventory is managed elsewhere.
type Hotel struct {
	ID    int64
	Name  string
	Image string
}

// Room holds up to Capacity simultaneous bookings.
type Room struct {
	ID       int64
	Name     string
	Capacity int
	HotelID  int64
}
