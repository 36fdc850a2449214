package transport

import (
	"net/http"

	"nexbuy/internal/middleware"
	"nexbuy/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AdviceRequest asks for a shopping recommendation.
type AdviceRequest struct {
	Query string `json:"query" validate:"required,min=2,max=500"`
}

// AdviceResponse carries the advisor's reply.
type AdviceResponse struct {
	Text string `json:"text"`
}

// AdvisorHandler handles shopping-advice requests.
type AdvisorHandler struct {
	advisorService service.AdvisorService
	cartService    service.CartService
	logger         *zap.Logger
}

// NewAdvisorHandler creates a new AdvisorHandler
func NewAdvisorHandler(advisorService service.AdvisorService, cartService service.CartService, logger *zap.Logger) *AdvisorHandler {
	return &AdvisorHandler{
		advisorService: advisorService,
		cartService:    cartService,
		logger:         logger,
	}
}

// RegisterRoutes registers the advice route behind a rate limiter.
func (h *AdvisorHandler) RegisterRoutes(r chi.Router, rateLimiter func(http.Handler) http.Handler) {
	r.With(rateLimiter).Post("/api/advice", h.Advise)
}

// Advise answers a shopping question grounded on the current catalog. The
// advisor never fails: upstream errors fall back to a canned recommendation.
func (h *AdvisorHandler) Advise(w http.ResponseWriter, r *http.Request) {
	var req AdviceRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	text := h.advisorService.Advise(r.Context(), req.Query, h.cartService.Catalog(r.Context()))
	middleware.RespondWithJSON(w, http.StatusOK, AdviceResponse{Text: text})
}
