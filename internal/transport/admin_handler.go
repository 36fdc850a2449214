package transport

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"nexbuy/internal/middleware"
	"nexbuy/internal/repository"
	"nexbuy/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ShippingRateRequest sets the delivery cost for a city.
type ShippingRateRequest struct {
	City string  `json:"city" validate:"required,min=2,max=100"`
	Cost float64 `json:"cost" validate:"gte=0"`
}

// AdminHandler handles the admin console: seller vetting, shipping rates,
// store-wide analytics and the recent purchase feed.
type AdminHandler struct {
	userService      service.UserService
	orderService     service.OrderService
	shippingRepo     repository.ShippingRateRepository
	notificationRepo repository.NotificationRepository
	logger           *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	userService service.UserService,
	orderService service.OrderService,
	shippingRepo repository.ShippingRateRepository,
	notificationRepo repository.NotificationRepository,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		userService:      userService,
		orderService:     orderService,
		shippingRepo:     shippingRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// RegisterRoutes registers admin routes. Everything under /api/admin requires
// the admin capability; the notification feed is public.
func (h *AdminHandler) RegisterRoutes(r chi.Router, authMiddleware, profileMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(profileMiddleware)
		r.Use(middleware.RequireAdmin(h.logger))
		r.Get("/sellers/pending", h.PendingSellers)
		r.Post("/sellers/{userID}/approve", h.ApproveSeller)
		r.Post("/sellers/{userID}/reject", h.RejectSeller)
		r.Get("/shipping-rates", h.ListShippingRates)
		r.Put("/shipping-rates", h.UpsertShippingRate)
		r.Delete("/shipping-rates/{city}", h.DeleteShippingRate)
		r.Get("/analytics", h.Analytics)
	})

	r.Get("/api/notifications", h.RecentNotifications)
}

// PendingSellers lists seller applications awaiting a decision
func (h *AdminHandler) PendingSellers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.PendingSellers(r.Context())
	if err != nil {
		h.logger.Error("Failed to list pending sellers", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list pending sellers")
		return
	}

	applicants := make([]UserProfile, 0, len(users))
	for _, u := range users {
		applicants = append(applicants, profileView(h.userService, u))
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string][]UserProfile{"applicants": applicants})
}

// ApproveSeller grants seller capability to a pending applicant
func (h *AdminHandler) ApproveSeller(w http.ResponseWriter, r *http.Request) {
	h.decideSeller(w, r, h.userService.ApproveSeller, "approved")
}

// RejectSeller declines a pending application; the user stays a customer
func (h *AdminHandler) RejectSeller(w http.ResponseWriter, r *http.Request) {
	h.decideSeller(w, r, h.userService.RejectSeller, "rejected")
}

func (h *AdminHandler) decideSeller(w http.ResponseWriter, r *http.Request, decide func(ctx context.Context, id uuid.UUID) error, outcome string) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := decide(r.Context(), userID); err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, service.ErrNotPendingSeller):
			middleware.RespondWithError(w, http.StatusConflict, "user has no pending seller application")
		default:
			h.logger.Error("Seller decision failed", zap.String("user_id", userID.String()), zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to record decision")
		}
		return
	}

	h.logger.Info("Seller application decided",
		zap.String("user_id", userID.String()),
		zap.String("outcome", outcome),
	)
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": outcome})
}

// ListShippingRates returns the per-city delivery cost table
func (h *AdminHandler) ListShippingRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.shippingRepo.All(r.Context())
	if err != nil {
		h.logger.Error("Failed to list shipping rates", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list shipping rates")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]map[string]float64{"rates": rates})
}

// UpsertShippingRate creates or replaces a city's delivery cost
func (h *AdminHandler) UpsertShippingRate(w http.ResponseWriter, r *http.Request) {
	var req ShippingRateRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.shippingRepo.Upsert(r.Context(), req.City, req.Cost); err != nil {
		h.logger.Error("Failed to upsert shipping rate", zap.String("city", req.City), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to save shipping rate")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]any{"city": req.City, "cost": req.Cost})
}

// DeleteShippingRate removes a city from the rate table
func (h *AdminHandler) DeleteShippingRate(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "city")

	if err := h.shippingRepo.Delete(r.Context(), city); err != nil {
		if errors.Is(err, repository.ErrShippingRateNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "shipping rate not found")
			return
		}

		h.logger.Error("Failed to delete shipping rate", zap.String("city", city), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete shipping rate")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Analytics summarizes all non-cancelled orders store-wide
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	capability := middleware.GetCapability(r.Context())

	analytics, err := h.orderService.Analytics(r.Context(), user, capability)
	if err != nil {
		h.logger.Error("Failed to compute analytics", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to compute analytics")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, analytics)
}

// RecentNotifications returns the latest purchase feed entries
func (h *AdminHandler) RecentNotifications(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	notifications, err := h.notificationRepo.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to load notifications", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load notifications")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}
