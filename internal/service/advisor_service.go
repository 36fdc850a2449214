package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"nexbuy/internal/config"
	"nexbuy/internal/domain"

	"go.uber.org/zap"
)

// FallbackAdvice is returned whenever the generative backend is unreachable
// or misbehaves. Advice is best-effort and never fails the caller.
const FallbackAdvice = "I'm having trouble thinking right now, but I'd suggest our best-seller, the Nexbuy Crystal HD Projector! 🚀"

// AdvisorService answers natural-language shopping questions against the
// current catalog via an external generative-text backend.
type AdvisorService interface {
	Advise(ctx context.Context, query string, products []domain.Product) string
}

type advisorService struct {
	cfg    config.AdvisorConfig
	client *http.Client
	logger *zap.Logger
}

// NewAdvisorService creates a new instance of AdvisorService
func NewAdvisorService(cfg config.AdvisorConfig, logger *zap.Logger) AdvisorService {
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	return &advisorService{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type adviceRequest struct {
	Prompt string `json:"prompt"`
}

type adviceResponse struct {
	Text string `json:"text"`
}

// Advise asks the backend for a short recommendation. Every failure path
// resolves to the canned fallback string.
func (s *advisorService) Advise(ctx context.Context, query string, products []domain.Product) string {
	if s.cfg.BaseURL == "" {
		return FallbackAdvice
	}

	summary := make([]map[string]any, 0, len(products))
	for _, p := range products {
		summary = append(summary, map[string]any{
			"name":     p.Name,
			"price":    p.Price,
			"category": p.Category,
			"rating":   p.Rating,
		})
	}
	catalogJSON, err := json.Marshal(summary)
	if err != nil {
		return FallbackAdvice
	}

	prompt := fmt.Sprintf(
		`User asks: %q. Based on these products: %s, recommend the best one. Give a very short, friendly, conversational response. Be concise. Use emojis.`,
		query, catalogJSON,
	)

	body, err := json.Marshal(adviceRequest{Prompt: prompt})
	if err != nil {
		return FallbackAdvice
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return FallbackAdvice
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Debug("Advisor backend request failed", zap.Error(err))
		return FallbackAdvice
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Debug("Advisor backend returned non-OK status", zap.Int("status", resp.StatusCode))
		return FallbackAdvice
	}

	var advice adviceResponse
	if err := json.NewDecoder(resp.Body).Decode(&advice); err != nil || advice.Text == "" {
		return FallbackAdvice
	}

	return advice.Text
}
