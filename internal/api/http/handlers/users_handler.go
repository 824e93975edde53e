package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/api/dto"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/service"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util/errorutil"
)

// UsersHandler exposes user registration endpoints.
type UsersHandler struct {
	service *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{service: userService}
}

// List handles GET /user.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	response := make(map[int64]dto.UserResponse, len(users))
	for id, user := range users {
		response[id] = userResponse(user)
	}
	return c.JSON(response)
}

// Register handles POST /user.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" {
		return apperrors.NewValidationError("username is required", nil)
	}

	user, err := h.service.Register(c.UserContext(), req.Username)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(userResponse(*user))
}

// Delete handles DELETE /user.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	var req dto.DeleteUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserID == 0 {
		return apperrors.NewValidationError("user_id is required to delete user", nil)
	}

	user, err := h.service.Delete(c.UserContext(), req.UserID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(userResponse(*user))
}

func userResponse(user domain.User) dto.UserResponse {
	return dto.UserResponse{
		UserID:   user.ID,
		Username: user.Username,
	}
}
