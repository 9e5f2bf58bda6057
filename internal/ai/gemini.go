package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketflow/internal/config"
	"github.com/spec-kit/ticketflow/internal/domain"
)

// GeminiAdvisor calls a generateContent-style endpoint. Failures degrade to
// the same defaults as Disabled.
type GeminiAdvisor struct {
	cfg    config.AIConfig
	client *http.Client
	logger *zap.Logger
}

// NewGeminiAdvisor builds the HTTP advisory client.
func NewGeminiAdvisor(cfg config.AIConfig, logger *zap.Logger) *GeminiAdvisor {
	return &GeminiAdvisor{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout()},
		logger: logger,
	}
}

// NewAdvisor returns the HTTP client when an API key is configured, the
// disabled advisor otherwise.
func NewAdvisor(cfg config.AIConfig, logger *zap.Logger) Advisor {
	if cfg.APIKey == "" {
		logger.Warn("advisory API key not configured; suggestions disabled")
		return Disabled{}
	}
	return NewGeminiAdvisor(cfg, logger)
}

// SuggestTopic categorizes a description into the closed topic set.
func (g *GeminiAdvisor) SuggestTopic(ctx context.Context, description string) domain.TicketTopic {
	topics := make([]string, 0, len(domain.Topics()))
	for _, t := range domain.Topics() {
		topics = append(topics, string(t))
	}
	prompt := fmt.Sprintf(
		"Analyze the following ticket description and categorize it into exactly one of these categories: [%s].\nDescription: %q.\nReturn ONLY the category name as a plain string. If unsure, return %q.",
		strings.Join(topics, ", "), description, string(domain.TopicOther))

	text, err := g.generate(ctx, prompt)
	if err != nil {
		g.logger.Warn("topic suggestion failed", zap.Error(err))
		return domain.TopicOther
	}
	answer := strings.TrimSpace(text)
	for _, t := range domain.Topics() {
		if strings.EqualFold(string(t), answer) {
			return t
		}
	}
	return domain.TopicOther
}

// SuggestPriority estimates urgency from a description.
func (g *GeminiAdvisor) SuggestPriority(ctx context.Context, description string) domain.TicketPriority {
	priorities := make([]string, 0, len(domain.Priorities()))
	for _, p := range domain.Priorities() {
		priorities = append(priorities, string(p))
	}
	prompt := fmt.Sprintf(
		"Estimate the urgency of the following support ticket as exactly one of: [%s].\nDescription: %q.\nReturn ONLY the priority name as a plain string. If unsure, return %q.",
		strings.Join(priorities, ", "), description, string(domain.PriorityNormal))

	text, err := g.generate(ctx, prompt)
	if err != nil {
		g.logger.Warn("priority suggestion failed", zap.Error(err))
		return domain.PriorityNormal
	}
	answer := strings.TrimSpace(text)
	for _, p := range domain.Priorities() {
		if strings.EqualFold(string(p), answer) {
			return p
		}
	}
	return domain.PriorityNormal
}

// ImproveDescription rewrites the description for clarity; on failure the
// input is returned unchanged.
func (g *GeminiAdvisor) ImproveDescription(ctx context.Context, description string) string {
	prompt := fmt.Sprintf(
		"Rewrite the following support ticket description so it is clear and complete, keeping the original language.\nIMPORTANTE: Responde siempre en Español.\n\nDescripción: %s",
		description)

	text, err := g.generate(ctx, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			g.logger.Warn("description rewrite failed", zap.Error(err))
		}
		return description
	}
	return strings.TrimSpace(text)
}

// SuggestReply proposes diagnostic steps for a ticket.
func (g *GeminiAdvisor) SuggestReply(ctx context.Context, title, description string) string {
	prompt := fmt.Sprintf(
		"Actúa como un ingeniero de soporte técnico experto. Proporciona una lista breve y concisa con viñetas de 3 posibles soluciones o pasos de diagnóstico para el siguiente problema.\nIMPORTANTE: Responde siempre en Español.\n\nTítulo: %s\nDescripción: %s",
		title, description)

	text, err := g.generate(ctx, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			g.logger.Warn("reply suggestion failed", zap.Error(err))
		}
		return FallbackNoReply
	}
	return strings.TrimSpace(text)
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiAdvisor) generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(g.cfg.BaseURL, "/"), g.cfg.Model, g.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("advisory service returned %d", resp.StatusCode)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("advisory service returned no candidates")
	}
	return decoded.Candidates[0].Content.Parts[0].Text, nil
}
