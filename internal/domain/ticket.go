package domain

// Ticket is the aggregate for raised support tickets. Tickets are immutable
// after creation except for deletion. AssignedTo is the user chosen by the
// rotation at creation time and is kept as a historical record even if that
// user is later deleted.
type Ticket struct {
	ID         string
	Issue      string
	RaisedBy   int64
	AssignedTo int64
}
