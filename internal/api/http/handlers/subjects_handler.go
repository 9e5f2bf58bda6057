package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketflow/internal/api/dto"
	"github.com/spec-kit/ticketflow/internal/service"
	apperrors "github.com/spec-kit/ticketflow/pkg/util"
)

// SubjectsHandler manages the predefined subject labels.
type SubjectsHandler struct {
	lifecycle *service.LifecycleService
}

// NewSubjectsHandler constructs handler.
func NewSubjectsHandler(lifecycle *service.LifecycleService) *SubjectsHandler {
	return &SubjectsHandler{lifecycle: lifecycle}
}

// List GET /subjects.
func (h *SubjectsHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.lifecycle.Subjects()})
}

// Create POST /subjects.
func (h *SubjectsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	subject, err := h.lifecycle.AddSubject(c.UserContext(), req.Title)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": subject})
}

// Delete DELETE /subjects/:id. Existing tickets are untouched.
func (h *SubjectsHandler) Delete(c *fiber.Ctx) error {
	if err := h.lifecycle.DeleteSubject(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
