package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/cache"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

// TicketService coordinates raising and deleting tickets.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	assignment *AssignmentService
	cache      *cache.Cache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Assignment *AssignmentService
	Cache      *cache.Cache
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		assignment: deps.Assignment,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// Raise validates the requester, picks the next assignee from the rotation
// and persists the ticket with a fresh uuid in a single write.
//
// Ordering matters for the rotation cursor: requester validation happens
// before the selector is consulted, so a validation or not-found failure
// never advances the cursor.
func (s *TicketService) Raise(ctx context.Context, requesterID int64, issue string) (*domain.Ticket, error) {
	issue = strings.TrimSpace(issue)
	if requesterID <= 0 {
		return nil, apperrors.NewValidationError("user_id is required", nil)
	}
	if issue == "" {
		return nil, apperrors.NewValidationError("issue is required", nil)
	}

	if _, err := s.users.GetByID(ctx, requesterID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": requesterID})
		}
		return nil, apperrors.MapError(err)
	}

	assignee, err := s.assignment.NextAssignee(ctx)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		ID:         uuid.NewString(),
		Issue:      issue,
		RaisedBy:   requesterID,
		AssignedTo: assignee.ID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.invalidateListing(ctx)
	s.publishEvent(ctx, events.EventTicketRaised, events.TicketRaisedPayload{
		TicketID:   ticket.ID,
		RaisedBy:   ticket.RaisedBy,
		AssignedTo: ticket.AssignedTo,
		Issue:      ticket.Issue,
	})
	return ticket, nil
}

// Delete removes a ticket and returns the deleted snapshot. The rotation
// cursor is not involved.
func (s *TicketService) Delete(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	s.invalidateListing(ctx)
	s.publishEvent(ctx, events.EventTicketDeleted, events.TicketDeletedPayload{
		TicketID:   ticket.ID,
		AssignedTo: ticket.AssignedTo,
	})
	return ticket, nil
}

// List returns all tickets keyed by id. Pure read, served from the listing
// cache when it is warm.
func (s *TicketService) List(ctx context.Context) (map[string]domain.Ticket, error) {
	tickets, err := s.cache.GetTickets(ctx)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) && s.logger != nil {
			s.logger.Debug("ticket listing cache read failed", zap.Error(err))
		}
		tickets, err = s.tickets.List(ctx)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if err := s.cache.SetTickets(ctx, tickets); err != nil && s.logger != nil {
			s.logger.Debug("ticket listing cache write failed", zap.Error(err))
		}
	}

	result := make(map[string]domain.Ticket, len(tickets))
	for _, ticket := range tickets {
		result[ticket.ID] = ticket
	}
	return result, nil
}

func (s *TicketService) invalidateListing(ctx context.Context) {
	if err := s.cache.InvalidateTickets(ctx); err != nil && s.logger != nil {
		s.logger.Debug("ticket listing cache invalidation failed", zap.Error(err))
	}
}

func (s *TicketService) publishEvent(ctx context.Context, eventType events.EventType, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
