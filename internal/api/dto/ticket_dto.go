package dto

import "github.com/spec-kit/ticketflow/internal/domain"

// CreateTicketRequest is the ticket creation payload.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatorID   string `json:"creatorId"`
	CreatorName string `json:"creatorName"`
	Topic       string `json:"topic"`
	Priority    string `json:"priority"`
}

// ResolveTicketRequest carries the optional resolution note.
type ResolveTicketRequest struct {
	Note string `json:"note"`
}

// AddCommentRequest is the comment payload; the author is resolved from the
// caller's session, never from the body.
type AddCommentRequest struct {
	Text string `json:"text"`
}

// TicketResponse mirrors the persisted ticket shape.
type TicketResponse struct {
	ID             string           `json:"id"`
	Number         int              `json:"number"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	CreatorID      string           `json:"creatorId"`
	CreatorName    string           `json:"creatorName"`
	Topic          string           `json:"topic"`
	Priority       string           `json:"priority"`
	Status         string           `json:"status"`
	CreatedAt      int64            `json:"createdAt"`
	ResolvedAt     int64            `json:"resolvedAt,omitempty"`
	ResolutionNote string           `json:"resolutionNote,omitempty"`
	AISolution     string           `json:"aiSolution,omitempty"`
	Comments       []domain.Comment `json:"comments"`
}

// FromTicket converts a domain ticket to its API representation.
func FromTicket(t domain.Ticket) TicketResponse {
	comments := t.Comments
	if comments == nil {
		comments = []domain.Comment{}
	}
	return TicketResponse{
		ID:             t.ID,
		Number:         t.Number,
		Title:          t.Title,
		Description:    t.Description,
		CreatorID:      t.CreatorID,
		CreatorName:    t.CreatorName,
		Topic:          string(t.Topic),
		Priority:       string(t.Priority),
		Status:         string(t.Status),
		CreatedAt:      t.CreatedAt,
		ResolvedAt:     t.ResolvedAt,
		ResolutionNote: t.ResolutionNote,
		AISolution:     t.AISolution,
		Comments:       comments,
	}
}

// FromTickets converts a slice of tickets.
func FromTickets(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, FromTicket(t))
	}
	return out
}
