package dto

// RaiseTicketRequest payload for POST /ticket.
type RaiseTicketRequest struct {
	UserID int64  `json:"user_id"`
	Issue  string `json:"issue"`
}

// DeleteTicketRequest payload for DELETE /ticket.
type DeleteTicketRequest struct {
	TicketID string `json:"ticket_id"`
}

// TicketResponse is the wire representation of a ticket.
type TicketResponse struct {
	TicketID   string `json:"ticket_id"`
	Issue      string `json:"issue"`
	AssignedTo int64  `json:"assigned_to"`
	RaisedBy   int64  `json:"raised_by"`
}

// RaiseTicketData carries the created ticket's identity. Fields are
// pointers so the failure response can render them as nulls.
type RaiseTicketData struct {
	TicketID   *string `json:"ticket_id"`
	AssignedTo *int64  `json:"assigned_to"`
}

// RaiseTicketResponse is the envelope for POST /ticket outcomes.
type RaiseTicketResponse struct {
	Message string          `json:"message"`
	Success bool            `json:"success"`
	Data    RaiseTicketData `json:"data"`
}
