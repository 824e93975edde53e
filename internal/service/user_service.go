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

// UserService coordinates user registration and removal.
type UserService struct {
	users      repository.UserRepository
	cache      *cache.Cache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Cache      *cache.Cache
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		users:      deps.UserRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// Register persists a new user. The store assigns the id; ids are
// monotonically increasing, which fixes the rotation order.
func (s *UserService) Register(ctx context.Context, username string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperrors.NewValidationError("username is required", nil)
	}

	user := &domain.User{Username: username}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.invalidateListing(ctx)
	s.publishEvent(ctx, events.EventUserRegistered, events.UserRegisteredPayload{
		UserID:   user.ID,
		Username: user.Username,
	})
	return user, nil
}

// Delete removes a user and returns the deleted snapshot. Tickets already
// assigned to the user are left alone, and the rotation cursor is not
// adjusted here; the selector adapts on its next invocation.
func (s *UserService) Delete(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}

	s.invalidateListing(ctx)
	s.publishEvent(ctx, events.EventUserDeleted, events.UserDeletedPayload{
		UserID:   user.ID,
		Username: user.Username,
	})
	return user, nil
}

// List returns all registered users keyed by id. Pure read.
func (s *UserService) List(ctx context.Context) (map[int64]domain.User, error) {
	users, err := s.cache.GetUsers(ctx)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) && s.logger != nil {
			s.logger.Debug("user listing cache read failed", zap.Error(err))
		}
		users, err = s.users.List(ctx)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if err := s.cache.SetUsers(ctx, users); err != nil && s.logger != nil {
			s.logger.Debug("user listing cache write failed", zap.Error(err))
		}
	}

	result := make(map[int64]domain.User, len(users))
	for _, user := range users {
		result[user.ID] = user
	}
	return result, nil
}

func (s *UserService) invalidateListing(ctx context.Context) {
	if err := s.cache.InvalidateUsers(ctx); err != nil && s.logger != nil {
		s.logger.Debug("user listing cache invalidation failed", zap.Error(err))
	}
}

func (s *UserService) publishEvent(ctx context.Context, eventType events.EventType, payload any) {
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
