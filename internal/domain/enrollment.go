package domain

// Enrollment links a user to the event. Created externally; this service only
// reads it to resolve the ticket chain.
type Enrollment struct {
	ID     int64
	UserID int64
}
