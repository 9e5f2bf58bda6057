package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketflow/internal/api/dto"
	"github.com/spec-kit/ticketflow/internal/store"
	apperrors "github.com/spec-kit/ticketflow/pkg/util"
)

// SettingsHandler reads and writes the persisted UI settings (theme and the
// advisory feature flag).
type SettingsHandler struct {
	snapshots *store.SnapshotStore
}

// NewSettingsHandler constructs handler.
func NewSettingsHandler(snapshots *store.SnapshotStore) *SettingsHandler {
	return &SettingsHandler{snapshots: snapshots}
}

// Get GET /settings.
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	ctx := c.UserContext()
	return c.JSON(fiber.Map{"data": dto.SettingsResponse{
		Theme:     h.snapshots.Theme(ctx),
		AIEnabled: h.snapshots.AIEnabled(ctx),
	}})
}

// Update PUT /settings.
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ctx := c.UserContext()
	if req.Theme != nil {
		if err := h.snapshots.SetTheme(ctx, *req.Theme); err != nil {
			return apperrors.NewValidationError("theme must be dark or light", nil)
		}
	}
	if req.AIEnabled != nil {
		if err := h.snapshots.SetAIEnabled(ctx, *req.AIEnabled); err != nil {
			return apperrors.MapError(err)
		}
	}
	return h.Get(c)
}
