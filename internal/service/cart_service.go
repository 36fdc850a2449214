package service

import (
	"context"
	"errors"
	"fmt"

	"nexbuy/internal/catalog"
	"nexbuy/internal/devicestore"
	"nexbuy/internal/domain"
	"nexbuy/internal/repository"

	"go.uber.org/zap"
)

var ErrUnknownProduct = errors.New("unknown product")

// CartService manages the per-device cart and wishlist. Cart entries are
// keyed by product ID; the whole cart is rewritten to the device store on
// every change.
type CartService interface {
	Catalog(ctx context.Context) []domain.Product
	Get(ctx context.Context, deviceID string) []domain.CartItem
	Add(ctx context.Context, deviceID, productID string, user *domain.User) ([]domain.CartItem, *domain.Product, error)
	UpdateQuantity(ctx context.Context, deviceID, productID string, delta int) ([]domain.CartItem, error)
	Remove(ctx context.Context, deviceID, productID string) ([]domain.CartItem, error)
	Clear(ctx context.Context, deviceID string) error
	Subtotal(items []domain.CartItem) float64
	ShippingCost(ctx context.Context, city string) (float64, error)
	Wishlist(ctx context.Context, deviceID string) []domain.Product
	ToggleWishlist(ctx context.Context, deviceID, productID string) ([]domain.Product, error)
}

type cartService struct {
	devices      *devicestore.Store
	sellerRepo   repository.SellerProductRepository
	shippingRepo repository.ShippingRateRepository
	loyalty      LoyaltyService
	logger       *zap.Logger
}

// NewCartService creates a new instance of CartService
func NewCartService(
	devices *devicestore.Store,
	sellerRepo repository.SellerProductRepository,
	shippingRepo repository.ShippingRateRepository,
	loyalty LoyaltyService,
	logger *zap.Logger,
) CartService {
	return &cartService{
		devices:      devices,
		sellerRepo:   sellerRepo,
		shippingRepo: shippingRepo,
		loyalty:      loyalty,
		logger:       logger,
	}
}

// Catalog returns the base catalog merged with seller products. A seller
// product read failure degrades to the base catalog alone.
func (s *cartService) Catalog(ctx context.Context) []domain.Product {
	sellerProducts, err := s.sellerRepo.ListAll(ctx)
	if err != nil {
		s.logger.Warn("Failed to load seller products, serving base catalog", zap.Error(err))
		return catalog.Base()
	}
	return catalog.Merge(sellerProducts)
}

// Get hydrates the device's cart. Hydration failures are swallowed: the error
// is logged and the caller sees an empty cart.
func (s *cartService) Get(ctx context.Context, deviceID string) []domain.CartItem {
	items, err := s.devices.Cart(ctx, deviceID)
	if err != nil {
		s.logger.Warn("Cart hydration failed", zap.String("device_id", deviceID), zap.Error(err))
		return []domain.CartItem{}
	}
	if items == nil {
		items = []domain.CartItem{}
	}
	return items
}

// Add puts one unit of the product in the cart, merging with an existing
// entry for the same product ID, then awards the cart-add points. An award
// persistence failure never blocks the add.
func (s *cartService) Add(ctx context.Context, deviceID, productID string, user *domain.User) ([]domain.CartItem, *domain.Product, error) {
	product := s.findProduct(ctx, productID)
	if product == nil {
		return nil, nil, ErrUnknownProduct
	}

	items := s.Get(ctx, deviceID)
	merged := false
	for i := range items {
		if items[i].ID == productID {
			items[i].Quantity++
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, domain.CartItem{Product: *product, Quantity: 1})
	}

	if err := s.devices.SaveCart(ctx, deviceID, items); err != nil {
		return nil, nil, fmt.Errorf("failed to persist cart: %w", err)
	}

	if user != nil {
		if _, err := s.loyalty.Award(ctx, user, s.loyalty.CartAddPoints()); err != nil {
			s.logger.Warn("Cart-add point award failed",
				zap.String("user_id", user.ID.String()),
				zap.Error(err),
			)
		}
	}

	return items, product, nil
}

// UpdateQuantity adjusts an entry by delta, clamped to a minimum of 1.
// An unknown product ID is a no-op.
func (s *cartService) UpdateQuantity(ctx context.Context, deviceID, productID string, delta int) ([]domain.CartItem, error) {
	items := s.Get(ctx, deviceID)
	changed := false
	for i := range items {
		if items[i].ID == productID {
			q := items[i].Quantity + delta
			if q < 1 {
				q = 1
			}
			changed = items[i].Quantity != q
			items[i].Quantity = q
			break
		}
	}

	if changed {
		if err := s.devices.SaveCart(ctx, deviceID, items); err != nil {
			return nil, fmt.Errorf("failed to persist cart: %w", err)
		}
	}

	return items, nil
}

// Remove deletes the entry outright, regardless of quantity.
func (s *cartService) Remove(ctx context.Context, deviceID, productID string) ([]domain.CartItem, error) {
	items := s.Get(ctx, deviceID)
	out := items[:0]
	for _, item := range items {
		if item.ID != productID {
			out = append(out, item)
		}
	}

	if err := s.devices.SaveCart(ctx, deviceID, out); err != nil {
		return nil, fmt.Errorf("failed to persist cart: %w", err)
	}

	return out, nil
}

// Clear empties the cart. Called after a confirmed order.
func (s *cartService) Clear(ctx context.Context, deviceID string) error {
	if err := s.devices.SaveCart(ctx, deviceID, nil); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Subtotal sums price times quantity over all entries.
func (s *cartService) Subtotal(items []domain.CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.LineTotal()
	}
	return total
}

// ShippingCost looks up the city in the rate table, case-insensitively.
// An unmatched city costs zero.
func (s *cartService) ShippingCost(ctx context.Context, city string) (float64, error) {
	if city == "" {
		return 0, nil
	}
	return s.shippingRepo.CostForCity(ctx, city)
}

// Wishlist hydrates the device's wishlist, with the same swallow-on-failure
// contract as the cart.
func (s *cartService) Wishlist(ctx context.Context, deviceID string) []domain.Product {
	products, err := s.devices.Wishlist(ctx, deviceID)
	if err != nil {
		s.logger.Warn("Wishlist hydration failed", zap.String("device_id", deviceID), zap.Error(err))
		return []domain.Product{}
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products
}

// ToggleWishlist adds the product if absent, removes it if present.
func (s *cartService) ToggleWishlist(ctx context.Context, deviceID, productID string) ([]domain.Product, error) {
	products := s.Wishlist(ctx, deviceID)

	out := products[:0]
	removed := false
	for _, p := range products {
		if p.ID == productID {
			removed = true
			continue
		}
		out = append(out, p)
	}

	if !removed {
		product := s.findProduct(ctx, productID)
		if product == nil {
			return nil, ErrUnknownProduct
		}
		out = append(out, *product)
	}

	if err := s.devices.SaveWishlist(ctx, deviceID, out); err != nil {
		return nil, fmt.Errorf("failed to persist wishlist: %w", err)
	}

	return out, nil
}

func (s *cartService) findProduct(ctx context.Context, productID string) *domain.Product {
	for _, p := range s.Catalog(ctx) {
		if p.ID == productID {
			return &p
		}
	}
	return nil
}
