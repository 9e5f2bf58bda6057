package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketflow/internal/ai"
	"github.com/spec-kit/ticketflow/internal/api/dto"
	"github.com/spec-kit/ticketflow/internal/auth"
	"github.com/spec-kit/ticketflow/internal/domain"
	"github.com/spec-kit/ticketflow/internal/query"
	"github.com/spec-kit/ticketflow/internal/service"
	apperrors "github.com/spec-kit/ticketflow/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	lifecycle *service.LifecycleService
	advisor   ai.Advisor
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(lifecycle *service.LifecycleService, advisor ai.Advisor) *TicketsHandler {
	return &TicketsHandler{lifecycle: lifecycle, advisor: advisor}
}

// Create POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Title == "" || req.Description == "" {
		return apperrors.NewValidationError("title and description required", nil)
	}

	creatorName := req.CreatorName
	if user, ok := h.lifecycle.FindUser(req.CreatorID); ok {
		creatorName = user.Name
	}
	if creatorName == "" {
		return apperrors.NewValidationError("creator required", nil)
	}

	ticket, err := h.lifecycle.CreateTicket(c.UserContext(), service.CreateTicketInput{
		Title:       req.Title,
		Description: req.Description,
		CreatorID:   req.CreatorID,
		CreatorName: creatorName,
		Topic:       domain.TicketTopic(req.Topic),
		Priority:    domain.TicketPriority(req.Priority),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// List GET /tickets. Filter criteria come from query parameters; the view
// parameter selects the sort order (pending, resolved, default).
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	criteria := query.Criteria{
		Status:    c.Query("status"),
		Topic:     c.Query("topic"),
		Priority:  c.Query("priority"),
		Search:    c.Query("search"),
		DateStart: c.Query("dateStart"),
		DateEnd:   c.Query("dateEnd"),
	}
	tickets := query.Filter(h.lifecycle.Tickets(), criteria)

	switch c.Query("view") {
	case "pending":
		tickets = query.SortPending(tickets)
	case "resolved":
		tickets = query.SortResolved(tickets)
	default:
		tickets = query.SortByCreated(tickets)
	}
	return c.JSON(fiber.Map{"data": dto.FromTickets(tickets)})
}

// Mine GET /tickets/mine. Lists tickets created by the session identity.
func (h *TicketsHandler) Mine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.UserID == "" {
		return apperrors.NewUnauthorized("user identity required")
	}
	tickets := query.TicketsByCreator(h.lifecycle.Tickets(), principal.UserID)
	return c.JSON(fiber.Map{"data": dto.FromTickets(tickets)})
}

// Stats GET /tickets/stats. Aggregates are always computed over the full
// collection, never the filtered view.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	stats := query.ComputeStats(h.lifecycle.Tickets())
	return c.JSON(fiber.Map{"data": stats})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	for _, t := range h.lifecycle.Tickets() {
		if t.ID == id {
			return c.JSON(fiber.Map{"data": dto.FromTicket(t)})
		}
	}
	return apperrors.NewNotFound("ticket", map[string]any{"id": id})
}

// Resolve POST /tickets/:id/resolve. Admin only (route-guarded as well).
func (h *TicketsHandler) Resolve(c *fiber.Ctx) error {
	var req dto.ResolveTicketRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	ticket, err := h.lifecycle.ResolveTicket(c.UserContext(), c.Params("id"), req.Note, identityFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// Reopen POST /tickets/:id/reopen. Admin only.
func (h *TicketsHandler) Reopen(c *fiber.Ctx) error {
	ticket, err := h.lifecycle.ReopenTicket(c.UserContext(), c.Params("id"), identityFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// AddComment POST /tickets/:id/comments. The author identity is resolved
// here, from the session, and passed explicitly into the engine.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	var req dto.AddCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.lifecycle.AddComment(c.UserContext(), c.Params("id"), req.Text, identityFromContext(c))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": comment})
}

// Insight POST /tickets/:id/insight. Admin only: asks the advisor for
// diagnostic steps and stores them on the ticket.
func (h *TicketsHandler) Insight(c *fiber.Ctx) error {
	id := c.Params("id")
	var target *domain.Ticket
	for _, t := range h.lifecycle.Tickets() {
		if t.ID == id {
			ticket := t
			target = &ticket
			break
		}
	}
	if target == nil {
		return apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	if target.AISolution != "" {
		return c.JSON(fiber.Map{"data": dto.SuggestionResponse{Suggestion: target.AISolution}})
	}

	insight := h.advisor.SuggestReply(c.UserContext(), target.Title, target.Description)
	if err := h.lifecycle.AttachInsight(c.UserContext(), id, insight); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SuggestionResponse{Suggestion: insight}})
}

// identityFromContext maps the session principal to the engine's explicit
// identity parameter. Anonymous callers get the generic placeholder name.
func identityFromContext(c *fiber.Ctx) service.Identity {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return service.Identity{Name: "Usuario"}
	}
	if principal.Role == auth.RoleAdmin {
		return service.Identity{Name: "Admin", IsAdmin: true}
	}
	name := principal.Name
	if name == "" {
		name = "Usuario"
	}
	return service.Identity{Name: name, UserID: principal.UserID}
}
