package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nexbuy/internal/domain"
	"nexbuy/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrSignInRequired       = errors.New("sign in required to checkout")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidTransition    = errors.New("invalid order status transition")
	ErrNotOrderSeller       = errors.New("order contains no items owned by this seller")
	ErrStatusUpdateConflict = errors.New("order status was not updated")
)

// shippedDeliveryWindow is the estimated transit time stamped on an order
// when it moves to shipped.
const shippedDeliveryWindow = 5 * 24 * time.Hour

// CheckoutRequest is the input to order creation. Items are not part of the
// request; they are snapshotted from the device's cart server-side.
type CheckoutRequest struct {
	DeviceID        string
	PaymentMethod   string
	ShippingAddress *domain.ShippingAddress
}

// OrderService owns checkout and the order status lifecycle.
type OrderService interface {
	Checkout(ctx context.Context, user *domain.User, req CheckoutRequest) (*domain.Order, error)
	OrdersFor(ctx context.Context, user *domain.User, capability domain.Capability) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, actor *domain.User, capability domain.Capability, orderID string, next domain.OrderStatus) (*domain.Order, error)
	Analytics(ctx context.Context, user *domain.User, capability domain.Capability) (*domain.Analytics, error)
}

type orderService struct {
	orderRepo        repository.OrderRepository
	notificationRepo repository.NotificationRepository
	cart             CartService
	logger           *zap.Logger
	now              func() time.Time
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(
	orderRepo repository.OrderRepository,
	notificationRepo repository.NotificationRepository,
	cart CartService,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		orderRepo:        orderRepo,
		notificationRepo: notificationRepo,
		cart:             cart,
		logger:           logger,
		now:              time.Now,
	}
}

// notificationCities feed the cosmetic purchase ticker.
var notificationCities = []string{"London", "New York", "Paris", "Tokyo", "Berlin", "Dubai"}

// Checkout snapshots the device's cart into a pending order. The cart is
// cleared only after the order row is written; a create failure leaves the
// cart untouched so the caller stays on the checkout step.
func (s *orderService) Checkout(ctx context.Context, user *domain.User, req CheckoutRequest) (*domain.Order, error) {
	if user == nil {
		return nil, ErrSignInRequired
	}

	items := s.cart.Get(ctx, req.DeviceID)
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	subtotal := s.cart.Subtotal(items)
	var shippingCost float64
	if req.ShippingAddress != nil {
		cost, err := s.cart.ShippingCost(ctx, req.ShippingAddress.City)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve shipping cost: %w", err)
		}
		shippingCost = cost
	}

	var profit float64
	for _, item := range items {
		profit += item.LineProfit()
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = domain.PaymentMethodCard
	}

	snapshot := make([]domain.CartItem, len(items))
	copy(snapshot, items)

	order := &domain.Order{
		ID:              newOrderID(),
		UserID:          user.ID,
		CustomerName:    user.Name,
		CustomerEmail:   user.Email,
		Items:           snapshot,
		Total:           subtotal + shippingCost,
		Profit:          profit,
		Status:          domain.OrderPending,
		PaymentMethod:   paymentMethod,
		PaymentStatus:   domain.PaymentStatusPaid,
		ShippingAddress: req.ShippingAddress,
		ShippingCost:    shippingCost,
		CreatedAt:       s.now(),
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := s.cart.Clear(ctx, req.DeviceID); err != nil {
		// The order exists; a stale cart is the lesser failure.
		s.logger.Warn("Failed to clear cart after checkout",
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
	}

	// Best-effort purchase ticker entry.
	city := notificationCities[int(s.now().UnixNano())%len(notificationCities)]
	if err := s.notificationRepo.Push(ctx, user.Name, city, order.Items[0].Name); err != nil {
		s.logger.Debug("Notification push failed", zap.Error(err))
	}

	return order, nil
}

// OrdersFor returns the orders visible to the caller: everything for admins,
// orders containing the seller's items for approved sellers, and the caller's
// own orders otherwise.
func (s *orderService) OrdersFor(ctx context.Context, user *domain.User, capability domain.Capability) ([]*domain.Order, error) {
	if user == nil {
		return nil, ErrSignInRequired
	}

	switch {
	case capability.IsAdmin():
		return s.orderRepo.ListAll(ctx)
	case capability == domain.CapApprovedSeller:
		return s.orderRepo.ListBySeller(ctx, user.ID)
	default:
		return s.orderRepo.ListByUser(ctx, user.ID)
	}
}

// UpdateStatus moves an order one step forward, or cancels it from any
// non-terminal state. Admins may update any order; approved sellers only
// orders containing their own items. The transition is validated before the
// write so an out-of-order value is never stored by this service.
func (s *orderService) UpdateStatus(ctx context.Context, actor *domain.User, capability domain.Capability, orderID string, next domain.OrderStatus) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !capability.IsAdmin() {
		if capability != domain.CapApprovedSeller || !orderContainsSeller(order, actor.ID) {
			return nil, ErrNotOrderSeller
		}
	}

	if !order.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, next)
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, next); err != nil {
		return nil, err
	}
	order.Status = next

	if next == domain.OrderShipped {
		tracking := newTrackingNumber()
		eta := s.now().Add(shippedDeliveryWindow).Format("2006-01-02")
		if err := s.orderRepo.SetLogistics(ctx, orderID, tracking, eta); err != nil {
			s.logger.Warn("Failed to set order logistics", zap.String("order_id", orderID), zap.Error(err))
		} else {
			order.TrackingNumber = tracking
			order.EstimatedDelivery = eta
		}
	}

	return order, nil
}

// Analytics summarizes non-cancelled orders for the caller's console.
func (s *orderService) Analytics(ctx context.Context, user *domain.User, capability domain.Capability) (*domain.Analytics, error) {
	orders, err := s.OrdersFor(ctx, user, capability)
	if err != nil {
		return nil, err
	}

	analytics := &domain.Analytics{GrowthRate: 18.2}
	for _, order := range orders {
		if order.Status == domain.OrderCancelled {
			continue
		}
		analytics.TotalRevenue += order.Total
		analytics.TotalProfit += order.Profit
		analytics.ActiveOrders++
	}

	return analytics, nil
}

func orderContainsSeller(order *domain.Order, sellerID uuid.UUID) bool {
	id := sellerID.String()
	for _, item := range order.Items {
		if item.SellerID == id {
			return true
		}
	}
	return false
}

func newOrderID() string {
	return "ord_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:20]
}

func newTrackingNumber() string {
	return "NXB-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:10])
}
