package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketflow/internal/api/dto"
	"github.com/spec-kit/ticketflow/internal/auth"
	"github.com/spec-kit/ticketflow/internal/service"
	apperrors "github.com/spec-kit/ticketflow/pkg/util"
)

// SessionHandler issues tokens: the administrator capability via password,
// and the per-session user identity used to attribute comments.
type SessionHandler struct {
	tokens            *auth.TokenManager
	lifecycle         *service.LifecycleService
	adminPasswordHash string
}

// NewSessionHandler constructs handler.
func NewSessionHandler(tokens *auth.TokenManager, lifecycle *service.LifecycleService, adminPasswordHash string) *SessionHandler {
	return &SessionHandler{
		tokens:            tokens,
		lifecycle:         lifecycle,
		adminPasswordHash: adminPasswordHash,
	}
}

// AdminLogin POST /session/admin.
func (h *SessionHandler) AdminLogin(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := auth.ComparePassword(h.adminPasswordHash, req.Password); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := h.tokens.GenerateToken("", "Admin", auth.RoleAdmin)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": dto.SessionResponse{
		Token:     token,
		ExpiresAt: expiresAt.UnixMilli(),
		Role:      string(auth.RoleAdmin),
		Name:      "Admin",
	}})
}

// SelectIdentity POST /session/identity. Binds the session to an existing
// user so subsequent comments and "my tickets" queries are attributed.
func (h *SessionHandler) SelectIdentity(c *fiber.Ctx) error {
	var req dto.SelectIdentityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserID == "" {
		return apperrors.NewValidationError("userId required", nil)
	}
	user, ok := h.lifecycle.FindUser(req.UserID)
	if !ok {
		return apperrors.NewNotFound("user", map[string]any{"id": req.UserID})
	}

	token, expiresAt, err := h.tokens.GenerateToken(user.ID, user.Name, auth.RoleUser)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": dto.SessionResponse{
		Token:     token,
		ExpiresAt: expiresAt.UnixMilli(),
		Role:      string(auth.RoleUser),
		Name:      user.Name,
		UserID:    user.ID,
	}})
}
