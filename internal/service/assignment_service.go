package service

import (
	"context"
	"sync"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

// AssignmentService owns the round-robin rotation over the registered user
// set. The cursor is a relative position into the listing, not a user id:
// the listing is re-fetched fresh on every call, and if the set shrank since
// the last selection the cursor resets to the front. Index semantics mean a
// deletion can repeat or skip a user relative to identity-based rotation;
// that is the assignment policy, not an accident.
//
// The cursor is never exposed; callers only get NextAssignee. The mutex
// makes fetch-advance-return atomic with respect to concurrent raises, so
// two simultaneous raises can never observe the same pre-advance position.
type AssignmentService struct {
	users repository.UserRepository

	mu       sync.Mutex
	position int
}

// NewAssignmentService creates the service with an unset cursor, so the
// first selection lands on the first registered user.
func NewAssignmentService(users repository.UserRepository) *AssignmentService {
	return &AssignmentService{
		users:    users,
		position: -1,
	}
}

// NextAssignee returns the next user in rotation and advances the cursor.
// With no users registered it fails with NO_ASSIGNEE_AVAILABLE and leaves
// the cursor untouched.
func (s *AssignmentService) NextAssignee(ctx context.Context) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(users) == 0 {
		return nil, apperrors.NewNoAssigneeAvailable()
	}

	s.position++
	if s.position >= len(users) {
		s.position = 0
	}

	assignee := users[s.position]
	return &assignee, nil
}
