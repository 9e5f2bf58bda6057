// Package ai wraps the external advisory service. Every operation returns a
// safe default instead of an error: the advisory layer is never required for
// correctness and must never block ticket creation or comment posting.
package ai

import (
	"context"

	"github.com/spec-kit/ticketflow/internal/domain"
)

// Fallback strings surfaced when the service is unavailable.
const (
	FallbackNoKey   = "API Key no configurada."
	FallbackNoReply = "No se pudieron obtener sugerencias de IA en este momento."
)

// Advisor suggests categories, priorities, rewritten text and replies for
// free-form ticket text.
type Advisor interface {
	SuggestTopic(ctx context.Context, description string) domain.TicketTopic
	SuggestPriority(ctx context.Context, description string) domain.TicketPriority
	ImproveDescription(ctx context.Context, description string) string
	SuggestReply(ctx context.Context, title, description string) string
}

// Disabled is the Advisor used when the feature flag is off or no API key is
// configured. It answers immediately with the safe defaults.
type Disabled struct{}

func (Disabled) SuggestTopic(ctx context.Context, description string) domain.TicketTopic {
	return domain.TopicOther
}

func (Disabled) SuggestPriority(ctx context.Context, description string) domain.TicketPriority {
	return domain.PriorityNormal
}

func (Disabled) ImproveDescription(ctx context.Context, description string) string {
	return description
}

func (Disabled) SuggestReply(ctx context.Context, title, description string) string {
	return FallbackNoKey
}
