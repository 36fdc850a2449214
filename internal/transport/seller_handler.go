package transport

import (
	"errors"
	"net/http"

	"nexbuy/internal/middleware"
	"nexbuy/internal/repository"
	"nexbuy/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductRequest carries the editable fields of a seller listing.
type ProductRequest struct {
	Name        string            `json:"name" validate:"required,min=2,max=200"`
	Price       float64           `json:"price" validate:"required,gt=0"`
	CostPrice   float64           `json:"cost_price" validate:"gte=0"`
	Category    string            `json:"category" validate:"required"`
	ImageURL    string            `json:"image_url" validate:"omitempty,url"`
	Description string            `json:"description"`
	Colors      []string          `json:"colors"`
	Stock       int               `json:"stock" validate:"gte=0"`
	VideoURL    string            `json:"video_url" validate:"omitempty,url"`
	XPGain      int               `json:"xp_gain" validate:"gte=0"`
	Specs       map[string]string `json:"specs"`
}

// SellerHandler handles the seller console: listings and sales analytics.
type SellerHandler struct {
	sellerService service.SellerService
	orderService  service.OrderService
	logger        *zap.Logger
}

// NewSellerHandler creates a new SellerHandler
func NewSellerHandler(sellerService service.SellerService, orderService service.OrderService, logger *zap.Logger) *SellerHandler {
	return &SellerHandler{
		sellerService: sellerService,
		orderService:  orderService,
		logger:        logger,
	}
}

// RegisterRoutes registers seller console routes. All routes require an
// approved-seller or admin capability.
func (h *SellerHandler) RegisterRoutes(r chi.Router, authMiddleware, profileMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/seller", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(profileMiddleware)
		r.Use(middleware.RequireSellerConsole(h.logger))
		r.Get("/products", h.ListProducts)
		r.Post("/products", h.CreateProduct)
		r.Put("/products/{productID}", h.UpdateProduct)
		r.Delete("/products/{productID}", h.DeleteProduct)
		r.Get("/analytics", h.Analytics)
	})
}

// ListProducts returns the caller's own listings
func (h *SellerHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	products, err := h.sellerService.Products(r.Context(), user)
	if err != nil {
		h.logger.Error("Failed to list seller products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]any{"products": products})
}

// CreateProduct adds a new listing owned by the caller
func (h *SellerHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.sellerService.CreateProduct(r.Context(), user, productInput(req))
	if err != nil {
		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProduct replaces the editable fields of a listing
func (h *SellerHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	capability := middleware.GetCapability(r.Context())
	productID := chi.URLParam(r, "productID")

	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.sellerService.UpdateProduct(r.Context(), user, capability, productID, productInput(req))
	if err != nil {
		h.respondProductError(w, productID, err, "failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct removes a listing
func (h *SellerHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	capability := middleware.GetCapability(r.Context())
	productID := chi.URLParam(r, "productID")

	if err := h.sellerService.DeleteProduct(r.Context(), user, capability, productID); err != nil {
		h.respondProductError(w, productID, err, "failed to delete product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Analytics summarizes the caller's sales
func (h *SellerHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	capability := middleware.GetCapability(r.Context())

	analytics, err := h.orderService.Analytics(r.Context(), user, capability)
	if err != nil {
		h.logger.Error("Failed to compute seller analytics", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to compute analytics")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, analytics)
}

func (h *SellerHandler) respondProductError(w http.ResponseWriter, productID string, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, service.ErrNotProductOwner):
		middleware.RespondWithError(w, http.StatusForbidden, "product belongs to another seller")
	default:
		h.logger.Error("Seller product operation failed",
			zap.String("product_id", productID),
			zap.Error(err),
		)
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}

func productInput(req ProductRequest) service.ProductInput {
	return service.ProductInput{
		Name:        req.Name,
		Price:       req.Price,
		CostPrice:   req.CostPrice,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Description: req.Description,
		Colors:      req.Colors,
		Stock:       req.Stock,
		VideoURL:    req.VideoURL,
		XPGain:      req.XPGain,
		Specs:       req.Specs,
	}
}
