// Package devicestore persists per-device UI state in Redis: cart contents,
// wishlist contents, and the selected currency code. Each device gets its own
// namespace; blobs are JSON and rewritten whole on every change, mirroring the
// read-once-rewrite-always contract of browser local storage.
package devicestore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"nexbuy/internal/domain"

	"github.com/redis/go-redis/v9"
)

// Well-known per-device keys.
const (
	keyCart     = "cart"
	keyWishlist = "wishlist"
	keyCurrency = "nexbuy_currency"
)

// blobTTL keeps abandoned device state from accumulating forever.
const blobTTL = 30 * 24 * time.Hour

// Store reads and writes per-device blobs.
type Store struct {
	client *redis.Client
}

// New creates a Store on an existing Redis client.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func deviceKey(deviceID, suffix string) string {
	return fmt.Sprintf("nexbuy:device:%s:%s", deviceID, suffix)
}

// Cart loads the persisted cart for a device. A missing key is an empty cart.
func (s *Store) Cart(ctx context.Context, deviceID string) ([]domain.CartItem, error) {
	var items []domain.CartItem
	if err := s.getJSON(ctx, deviceKey(deviceID, keyCart), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SaveCart replaces the persisted cart for a device.
func (s *Store) SaveCart(ctx context.Context, deviceID string, items []domain.CartItem) error {
	if items == nil {
		items = []domain.CartItem{}
	}
	return s.setJSON(ctx, deviceKey(deviceID, keyCart), items)
}

// Wishlist loads the persisted wishlist for a device.
func (s *Store) Wishlist(ctx context.Context, deviceID string) ([]domain.Product, error) {
	var products []domain.Product
	if err := s.getJSON(ctx, deviceKey(deviceID, keyWishlist), &products); err != nil {
		return nil, err
	}
	return products, nil
}

// SaveWishlist replaces the persisted wishlist for a device.
func (s *Store) SaveWishlist(ctx context.Context, deviceID string, products []domain.Product) error {
	if products == nil {
		products = []domain.Product{}
	}
	return s.setJSON(ctx, deviceKey(deviceID, keyWishlist), products)
}

// CurrencyCode returns the device's selected currency code, or "" when unset.
func (s *Store) CurrencyCode(ctx context.Context, deviceID string) (string, error) {
	code, err := s.client.Get(ctx, deviceKey(deviceID, keyCurrency)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read currency code: %w", err)
	}
	return code, nil
}

// SetCurrencyCode persists the device's currency selection.
func (s *Store) SetCurrencyCode(ctx context.Context, deviceID, code string) error {
	if err := s.client.Set(ctx, deviceKey(deviceID, keyCurrency), code, blobTTL).Err(); err != nil {
		return fmt.Errorf("failed to store currency code: %w", err)
	}
	return nil
}

func (s *Store) getJSON(ctx context.Context, key string, v any) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, blobTTL).Err(); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}
