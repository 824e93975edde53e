package handlers

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/api/dto"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/service"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

// TicketsHandler exposes ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// List handles GET /ticket.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	tickets, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	response := make(map[string]dto.TicketResponse, len(tickets))
	for id, ticket := range tickets {
		response[id] = ticketResponse(ticket)
	}
	return c.JSON(response)
}

// Raise handles POST /ticket.
//
// The unknown-requester failure keeps its historical envelope: a 404 with
// {message, success:false, data:{null,null}} instead of the generic error
// shape, so clients polling on `success` keep working.
func (h *TicketsHandler) Raise(c *fiber.Ctx) error {
	var req dto.RaiseTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserID == 0 {
		return apperrors.NewValidationError("ticket raiser's user_id is required", nil)
	}
	if req.Issue == "" {
		return apperrors.NewValidationError("description of the issue is required", nil)
	}

	ticket, err := h.service.Raise(c.UserContext(), req.UserID, req.Issue)
	if err != nil {
		if apperrors.IsCode(err, "NOT_FOUND") {
			return c.Status(http.StatusNotFound).JSON(dto.RaiseTicketResponse{
				Message: fmt.Sprintf("User %d does not exist, ticket cannot be raised", req.UserID),
				Success: false,
			})
		}
		return err
	}

	return c.JSON(dto.RaiseTicketResponse{
		Message: "Ticket raised successfully",
		Success: true,
		Data: dto.RaiseTicketData{
			TicketID:   &ticket.ID,
			AssignedTo: &ticket.AssignedTo,
		},
	})
}

// Delete handles DELETE /ticket.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	var req dto.DeleteTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TicketID == "" {
		return apperrors.NewValidationError("ticket_id is required", nil)
	}

	ticket, err := h.service.Delete(c.UserContext(), req.TicketID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(ticketResponse(*ticket))
}

func ticketResponse(ticket domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		TicketID:   ticket.ID,
		Issue:      ticket.Issue,
		AssignedTo: ticket.AssignedTo,
		RaisedBy:   ticket.RaisedBy,
	}
}
