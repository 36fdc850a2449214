package transport

import (
	"errors"
	"net/http"

	"nexbuy/internal/domain"
	"nexbuy/internal/middleware"
	"nexbuy/internal/repository"
	"nexbuy/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CheckoutHTTPRequest places an order from the device's cart.
type CheckoutHTTPRequest struct {
	PaymentMethod   string                  `json:"payment_method" validate:"omitempty,oneof=card points"`
	ShippingAddress *ShippingAddressRequest `json:"shipping_address"`
}

// ShippingAddressRequest is the delivery destination for an order.
type ShippingAddressRequest struct {
	FullName   string   `json:"full_name" validate:"required"`
	Street     string   `json:"street" validate:"required"`
	City       string   `json:"city" validate:"required"`
	Country    string   `json:"country" validate:"required"`
	PostalCode string   `json:"postal_code"`
	Phone      string   `json:"phone"`
	Lat        *float64 `json:"lat,omitempty"`
	Lng        *float64 `json:"lng,omitempty"`
}

// UpdateStatusRequest advances an order along its lifecycle.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderView is an order with the derived progress fraction attached.
type OrderView struct {
	*domain.Order
	Progress float64 `json:"progress"`
}

// OrderHandler handles checkout and the order lifecycle.
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// RegisterRoutes registers order routes. Checkout additionally requires the
// device header so the cart can be read and cleared.
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware, profileMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(profileMiddleware)
		r.With(middleware.RequireDeviceID).Post("/checkout", h.Checkout)
		r.Get("/", h.ListOrders)
		r.Patch("/{orderID}/status", h.UpdateStatus)
	})
}

// Checkout converts the device's cart into a pending order
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	deviceID, _ := middleware.GetDeviceID(r.Context())

	var req CheckoutHTTPRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	checkout := service.CheckoutRequest{
		DeviceID:      deviceID,
		PaymentMethod: req.PaymentMethod,
	}
	if req.ShippingAddress != nil {
		checkout.ShippingAddress = &domain.ShippingAddress{
			FullName:   req.ShippingAddress.FullName,
			Street:     req.ShippingAddress.Street,
			City:       req.ShippingAddress.City,
			Country:    req.ShippingAddress.Country,
			PostalCode: req.ShippingAddress.PostalCode,
			Phone:      req.ShippingAddress.Phone,
			Lat:        req.ShippingAddress.Lat,
			Lng:        req.ShippingAddress.Lng,
		}
	}

	order, err := h.orderService.Checkout(r.Context(), user, checkout)
	if err != nil {
		switch err {
		case service.ErrSignInRequired:
			middleware.RespondWithError(w, http.StatusUnauthorized, "sign in to place an order")
		case service.ErrEmptyCart:
			middleware.RespondWithError(w, http.StatusBadRequest, "cart is empty")
		default:
			h.logger.Error("Checkout failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to place order")
		}
		return
	}

	h.logger.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.String("user_id", user.ID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, orderView(order))
}

// ListOrders returns the orders visible to the caller: admins see all,
// approved sellers see orders containing their items, everyone else their own.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "profile not resolved")
		return
	}
	capability := middleware.GetCapability(r.Context())

	orders, err := h.orderService.OrdersFor(r.Context(), user, capability)
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, orderView(o))
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string][]OrderView{"orders": views})
}

// UpdateStatus advances an order one step, or cancels it
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	capability := middleware.GetCapability(r.Context())
	orderID := chi.URLParam(r, "orderID")

	var req UpdateStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	next := domain.OrderStatus(req.Status)
	if !next.Valid() {
		middleware.RespondWithError(w, http.StatusBadRequest, "unknown order status")
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), user, capability, orderID, next)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, service.ErrNotOrderSeller):
			middleware.RespondWithError(w, http.StatusForbidden, "order does not contain your items")
		case errors.Is(err, service.ErrInvalidTransition):
			middleware.RespondWithError(w, http.StatusConflict, "invalid status transition")
		default:
			h.logger.Error("Failed to update order status",
				zap.String("order_id", orderID),
				zap.Error(err),
			)
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update order status")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orderView(order))
}

func orderView(o *domain.Order) OrderView {
	return OrderView{
		Order:    o,
		Progress: o.Status.ProgressFraction(),
	}
}
