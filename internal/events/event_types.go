package events

import (
	"time"

	"github.com/spec-kit/ticketflow/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated  EventType = "ticket_created"
	EventTicketResolved EventType = "ticket_resolved"
	EventTicketReopened EventType = "ticket_reopened"
	EventCommentAdded   EventType = "ticket_comment_added"
	EventDataImported   EventType = "data_imported"
)

// Actor identifies who performed an action.
type Actor struct {
	Name    string `json:"name"`
	UserID  string `json:"user_id,omitempty"`
	IsAdmin bool   `json:"is_admin"`
}

// Event represents a domain event emitted by the lifecycle engine.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Number   int                   `json:"number"`
	Title    string                `json:"title"`
	Topic    domain.TicketTopic    `json:"topic"`
	Priority domain.TicketPriority `json:"priority"`
}

// TicketResolvedPayload payload.
type TicketResolvedPayload struct {
	Number         int    `json:"number"`
	ResolutionNote string `json:"resolution_note,omitempty"`
}

// TicketReopenedPayload payload.
type TicketReopenedPayload struct {
	Number int `json:"number"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID   string `json:"comment_id"`
	AuthorName  string `json:"author_name"`
	BodyPreview string `json:"body_preview"`
}

// DataImportedPayload payload.
type DataImportedPayload struct {
	Tickets  int `json:"tickets"`
	Users    int `json:"users"`
	Subjects int `json:"subjects"`
}
