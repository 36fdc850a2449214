package transport

import (
	"net/http"

	"nexbuy/internal/domain"
	"nexbuy/internal/middleware"
	"nexbuy/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CartItemRequest names a catalog product.
type CartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// QuantityRequest adjusts a cart line by a signed delta.
type QuantityRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Delta     int    `json:"delta" validate:"required"`
}

// CartResponse is the cart payload with derived totals.
type CartResponse struct {
	Items    []domain.CartItem `json:"items"`
	Subtotal float64           `json:"subtotal"`
}

// LoyaltySnapshot reflects the shopper's balance after a cart add.
type LoyaltySnapshot struct {
	Points          int     `json:"points"`
	Level           int     `json:"level"`
	ProgressPercent float64 `json:"progress_percent"`
}

// AddToCartResponse extends CartResponse with the shopper's updated balance.
type AddToCartResponse struct {
	CartResponse
	Loyalty *LoyaltySnapshot `json:"loyalty,omitempty"`
}

// CartHandler handles cart, wishlist and loyalty claim requests. All routes
// are keyed by the X-Device-ID header; cart adds additionally accept an
// optional bearer token so signed-in shoppers earn points.
type CartHandler struct {
	cartService    service.CartService
	loyaltyService service.LoyaltyService
	logger         *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService, loyaltyService service.LoyaltyService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService:    cartService,
		loyaltyService: loyaltyService,
		logger:         logger,
	}
}

// RegisterRoutes registers cart and wishlist routes
func (h *CartHandler) RegisterRoutes(r chi.Router, viewerMiddleware, profileMiddleware, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(middleware.RequireDeviceID)
		r.Use(viewerMiddleware)
		r.Use(profileMiddleware)
		r.Get("/", h.GetCart)
		r.Post("/items", h.AddItem)
		r.Patch("/items", h.UpdateQuantity)
		r.Delete("/items/{productID}", h.RemoveItem)
		r.Delete("/", h.ClearCart)
	})

	r.Route("/api/wishlist", func(r chi.Router) {
		r.Use(middleware.RequireDeviceID)
		r.Get("/", h.GetWishlist)
		r.Post("/toggle", h.ToggleWishlist)
	})

	r.Route("/api/loyalty", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(profileMiddleware)
		r.Post("/claim", h.ClaimDaily)
	})
}

// GetCart returns the device's cart with its subtotal
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	deviceID, _ := middleware.GetDeviceID(r.Context())
	items := h.cartService.Get(r.Context(), deviceID)

	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{
		Items:    items,
		Subtotal: h.cartService.Subtotal(items),
	})
}

// AddItem puts a product in the cart, merging into an existing line. A
// signed-in shopper earns cart points on each add.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	deviceID, _ := middleware.GetDeviceID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var req CartItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items, _, err := h.cartService.Add(r.Context(), deviceID, req.ProductID, user)
	if err != nil {
		if err == service.ErrUnknownProduct {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to add to cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add to cart")
		return
	}

	response := AddToCartResponse{
		CartResponse: CartResponse{
			Items:    items,
			Subtotal: h.cartService.Subtotal(items),
		},
	}
	if user != nil {
		response.Loyalty = &LoyaltySnapshot{
			Points:          user.Points,
			Level:           user.Level,
			ProgressPercent: user.ProgressPercent(),
		}
	}

	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// UpdateQuantity adjusts a line by a signed delta, never below one
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	deviceID, _ := middleware.GetDeviceID(r.Context())

	var req QuantityRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items, err := h.cartService.UpdateQuantity(r.Context(), deviceID, req.ProductID, req.Delta)
	if err != nil {
		h.logger.Error("Failed to update cart quantity", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{
		Items:    items,
		Subtotal: h.cartService.Subtotal(items),
	})
}

// RemoveItem deletes a line outright regardless of quantity
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	deviceID, _ := middleware.GetDeviceID(r.Context())
	productID := chi.URLParam(r, "productID")

	items, err := h.cartService.Remove(r.Context(), deviceID, productID)
	if err != nil {
		h.logger.Error("Failed to remove from cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to remove from cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{
		Items:    items,
		Subtotal: h.cartService.Subtotal(items),
	})
}

// ClearCart empties the device's cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	deviceID, _ := middleware.GetDeviceID(r.Context())

	if err := h.cartService.Clear(r.Context(), deviceID); err != nil {
		h.logger.Error("Failed to clear cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{Items: []domain.CartItem{}})
}

// GetWishlist returns the device's saved products
func (h *CartHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	deviceID, _ := middleware.GetDeviceID(r.Context())
	products := h.cartService.Wishlist(r.Context(), deviceID)

	middleware.RespondWithJSON(w, http.StatusOK, map[string][]domain.Product{"products": products})
}

// ToggleWishlist adds the product if absent, removes it if present
func (h *CartHandler) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	deviceID, _ := middleware.GetDeviceID(r.Context())

	var req CartItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	products, err := h.cartService.ToggleWishlist(r.Context(), deviceID, req.ProductID)
	if err != nil {
		if err == service.ErrUnknownProduct {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to toggle wishlist", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update wishlist")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string][]domain.Product{"products": products})
}

// ClaimDaily grants the once-per-day reward to the signed-in user
func (h *CartHandler) ClaimDaily(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "profile not resolved")
		return
	}

	result, err := h.loyaltyService.ClaimDaily(r.Context(), user)
	if err != nil {
		if err == service.ErrAlreadyClaimedToday {
			middleware.RespondWithError(w, http.StatusConflict, "daily reward already claimed")
			return
		}

		h.logger.Error("Daily claim failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to claim daily reward")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}
