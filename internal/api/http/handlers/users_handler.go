package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketflow/internal/api/dto"
	"github.com/spec-kit/ticketflow/internal/service"
	apperrors "github.com/spec-kit/ticketflow/pkg/util"
)

// UsersHandler manages the user collection.
type UsersHandler struct {
	lifecycle *service.LifecycleService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(lifecycle *service.LifecycleService) *UsersHandler {
	return &UsersHandler{lifecycle: lifecycle}
}

// List GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.lifecycle.Users()})
}

// Create POST /users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.lifecycle.AddUser(c.UserContext(), req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": user})
}

// Delete DELETE /users/:id. No cascade: the user's tickets keep the
// denormalized creator name.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	if err := h.lifecycle.DeleteUser(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
