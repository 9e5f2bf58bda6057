package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketflow/internal/ai"
	"github.com/spec-kit/ticketflow/internal/api/dto"
	"github.com/spec-kit/ticketflow/internal/auth"
	"github.com/spec-kit/ticketflow/internal/store"
	apperrors "github.com/spec-kit/ticketflow/pkg/util"
)

// AdvisoryHandler exposes the suggestion operations. Each session gets a
// latest-wins slot per operation: a newer request cancels the stale in-flight
// call, mirroring the debounced form fields these suggestions feed.
type AdvisoryHandler struct {
	advisor   ai.Advisor
	snapshots *store.SnapshotStore
	inflight  *ai.LatestWins
}

// NewAdvisoryHandler constructs handler.
func NewAdvisoryHandler(advisor ai.Advisor, snapshots *store.SnapshotStore) *AdvisoryHandler {
	return &AdvisoryHandler{
		advisor:   advisor,
		snapshots: snapshots,
		inflight:  ai.NewLatestWins(),
	}
}

// SuggestTopic POST /advisory/topic.
func (h *AdvisoryHandler) SuggestTopic(c *fiber.Ctx) error {
	req, err := h.parse(c)
	if err != nil {
		return err
	}
	var suggestion string
	h.inflight.Do(c.UserContext(), h.slot(c, "topic"), func(ctx context.Context) {
		suggestion = string(h.advisor.SuggestTopic(ctx, req.Description))
	})
	return c.JSON(fiber.Map{"data": dto.SuggestionResponse{Suggestion: suggestion}})
}

// SuggestPriority POST /advisory/priority.
func (h *AdvisoryHandler) SuggestPriority(c *fiber.Ctx) error {
	req, err := h.parse(c)
	if err != nil {
		return err
	}
	var suggestion string
	h.inflight.Do(c.UserContext(), h.slot(c, "priority"), func(ctx context.Context) {
		suggestion = string(h.advisor.SuggestPriority(ctx, req.Description))
	})
	return c.JSON(fiber.Map{"data": dto.SuggestionResponse{Suggestion: suggestion}})
}

// ImproveDescription POST /advisory/rewrite.
func (h *AdvisoryHandler) ImproveDescription(c *fiber.Ctx) error {
	req, err := h.parse(c)
	if err != nil {
		return err
	}
	var suggestion string
	h.inflight.Do(c.UserContext(), h.slot(c, "rewrite"), func(ctx context.Context) {
		suggestion = h.advisor.ImproveDescription(ctx, req.Description)
	})
	return c.JSON(fiber.Map{"data": dto.SuggestionResponse{Suggestion: suggestion}})
}

// SuggestReply POST /advisory/reply.
func (h *AdvisoryHandler) SuggestReply(c *fiber.Ctx) error {
	req, err := h.parse(c)
	if err != nil {
		return err
	}
	var suggestion string
	h.inflight.Do(c.UserContext(), h.slot(c, "reply"), func(ctx context.Context) {
		suggestion = h.advisor.SuggestReply(ctx, req.Title, req.Description)
	})
	return c.JSON(fiber.Map{"data": dto.SuggestionResponse{Suggestion: suggestion}})
}

func (h *AdvisoryHandler) parse(c *fiber.Ctx) (dto.SuggestionRequest, error) {
	var req dto.SuggestionRequest
	if err := c.BodyParser(&req); err != nil {
		return req, apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Description == "" {
		return req, apperrors.NewValidationError("description required", nil)
	}
	if !h.snapshots.AIEnabled(c.UserContext()) {
		return req, apperrors.NewForbidden("advisory suggestions are disabled")
	}
	return req, nil
}

// slot keys the latest-wins runner by caller identity and operation so rapid
// re-submissions from the same session supersede each other.
func (h *AdvisoryHandler) slot(c *fiber.Ctx, op string) string {
	if principal, ok := auth.PrincipalFromContext(c); ok && principal.UserID != "" {
		return principal.UserID + "|" + op
	}
	return c.IP() + "|" + op
}
