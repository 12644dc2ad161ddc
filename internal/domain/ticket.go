package domain

// TicketStatus enumerates payment states of a ticket.
type TicketStatus string

const (
	TicketStatusReserved TicketStatus = "RESERVED"
	TicketStatusPaid     TicketStatus = "PAID"
)

// TicketType carries the category flags that gate room booking.
type TicketType struct {
	ID            int64
	Name          string
	Price         int64
	IsRemote      bool
	IncludesHotel bool
}

// Ticket is a paid-event credential. Read-only to this service.
type Ticket struct {
	ID           int64
	EnrollmentID int64
	Status       TicketStatus
	TicketType   TicketType
}
