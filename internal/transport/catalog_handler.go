package transport

import (
	"net/http"
	"strconv"

	"nexbuy/internal/catalog"
	"nexbuy/internal/currency"
	"nexbuy/internal/devicestore"
	"nexbuy/internal/domain"
	"nexbuy/internal/middleware"
	"nexbuy/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductView is a catalog product with prices rendered in the viewer's currency.
type ProductView struct {
	domain.Product
	DisplayPrice string `json:"display_price"`
}

// CatalogResponse is the product listing payload.
type CatalogResponse struct {
	Products   []ProductView `json:"products"`
	Categories []string      `json:"categories"`
	Currency   string        `json:"currency"`
}

// CatalogHandler serves the product catalog and currency preferences.
type CatalogHandler struct {
	cartService service.CartService
	devices     *devicestore.Store
	logger      *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(cartService service.CartService, devices *devicestore.Store, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		cartService: cartService,
		devices:     devices,
		logger:      logger,
	}
}

// RegisterRoutes registers catalog routes. The viewer middleware resolves an
// optional bearer token so exclusive products are gated per capability.
func (h *CatalogHandler) RegisterRoutes(r chi.Router, viewerMiddleware, profileMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/catalog", func(r chi.Router) {
		r.Use(viewerMiddleware)
		r.Use(profileMiddleware)
		r.Use(middleware.RequireDeviceID)
		r.Get("/products", h.ListProducts)
		r.Get("/categories", h.ListCategories)
	})

	r.Route("/api/currency", func(r chi.Router) {
		r.Use(middleware.RequireDeviceID)
		r.Get("/", h.GetCurrency)
		r.Put("/", h.SetCurrency)
		r.Get("/supported", h.ListCurrencies)
	})
}

// ListProducts returns the merged catalog filtered by query parameters.
// Supported parameters: q, category, price_tier, min_rating.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	capability := middleware.GetCapability(r.Context())
	user, _ := middleware.GetUser(r.Context())

	filter := catalog.Filter{
		Query:       r.URL.Query().Get("q"),
		Category:    r.URL.Query().Get("category"),
		PriceTier:   r.URL.Query().Get("price_tier"),
		ViewerAdmin: capability == domain.CapAdmin,
	}
	if user != nil {
		filter.ViewerPremium = user.IsPremium
	}
	if raw := r.URL.Query().Get("min_rating"); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "min_rating must be a number")
			return
		}
		filter.MinRating = rating
	}

	merged := h.cartService.Catalog(r.Context())
	products := catalog.Apply(merged, filter)
	cur := h.viewerCurrency(r)

	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, ProductView{
			Product:      p,
			DisplayPrice: cur.Format(p.Price),
		})
	}

	middleware.RespondWithJSON(w, http.StatusOK, CatalogResponse{
		Products:   views,
		Categories: catalog.Categories(merged),
		Currency:   cur.Code,
	})
}

// ListCategories returns the category strip, "All" first.
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories := catalog.Categories(h.cartService.Catalog(r.Context()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string][]string{"categories": categories})
}

// ListCurrencies returns the supported currencies.
func (h *CatalogHandler) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, map[string]any{
		"currencies": currency.Supported(),
		"default":    currency.DefaultCode,
	})
}

// GetCurrency returns the device's currency preference.
func (h *CatalogHandler) GetCurrency(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.viewerCurrency(r))
}

// SetCurrencyRequest selects a display currency for the device.
type SetCurrencyRequest struct {
	Code string `json:"code" validate:"required"`
}

// SetCurrency stores the device's currency preference.
func (h *CatalogHandler) SetCurrency(w http.ResponseWriter, r *http.Request) {
	deviceID, _ := middleware.GetDeviceID(r.Context())

	var req SetCurrencyRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !currency.Known(req.Code) {
		middleware.RespondWithError(w, http.StatusBadRequest, "unsupported currency code")
		return
	}

	if err := h.devices.SetCurrencyCode(r.Context(), deviceID, req.Code); err != nil {
		h.logger.Error("Failed to store currency preference", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to store currency preference")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, currency.Lookup(req.Code))
}

// viewerCurrency resolves the display currency: an explicit ?currency= wins,
// then the device preference, then the store default.
func (h *CatalogHandler) viewerCurrency(r *http.Request) currency.Currency {
	if code := r.URL.Query().Get("currency"); code != "" && currency.Known(code) {
		return currency.Lookup(code)
	}

	if deviceID, ok := middleware.GetDeviceID(r.Context()); ok {
		code, err := h.devices.CurrencyCode(r.Context(), deviceID)
		if err != nil {
			h.logger.Debug("Failed to read currency preference", zap.Error(err))
		} else if code != "" {
			return currency.Lookup(code)
		}
	}

	return currency.Lookup(currency.DefaultCode)
}
