package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketRaised   EventType = "ticket_raised"
	EventTicketDeleted  EventType = "ticket_deleted"
	EventUserRegistered EventType = "user_registered"
	EventUserDeleted    EventType = "user_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketRaisedPayload payload.
type TicketRaisedPayload struct {
	TicketID   string `json:"ticket_id"`
	RaisedBy   int64  `json:"raised_by"`
	AssignedTo int64  `json:"assigned_to"`
	Issue      string `json:"issue"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	TicketID   string `json:"ticket_id"`
	AssignedTo int64  `json:"assigned_to"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// UserDeletedPayload payload.
type UserDeletedPayload struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}
