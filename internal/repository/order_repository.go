package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"nexbuy/internal/domain"

	"github.com/google/uuid"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderRepository defines the interface for order data access. Orders are
// immutable after creation except for status and logistics fields.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	ListAll(ctx context.Context) ([]*domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	SetLogistics(ctx context.Context, id, trackingNumber, estimatedDelivery string) error
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, user_id, customer_name, customer_email, items, total, profit,
	status, payment_method, payment_status, shipping_address, shipping_cost,
	tracking_number, estimated_delivery, created_at`

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to encode order items: %w", err)
	}

	var address []byte
	if order.ShippingAddress != nil {
		if address, err = json.Marshal(order.ShippingAddress); err != nil {
			return fmt.Errorf("failed to encode shipping address: %w", err)
		}
	}

	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		order.ID,
		order.UserID,
		order.CustomerName,
		order.CustomerEmail,
		items,
		order.Total,
		order.Profit,
		order.Status,
		order.PaymentMethod,
		order.PaymentStatus,
		address,
		order.ShippingCost,
		order.TrackingNumber,
		order.EstimatedDelivery,
		order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	return order, nil
}

func (r *orderRepository) ListAll(ctx context.Context) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	return r.list(ctx, query)
}

func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

// ListBySeller returns orders containing at least one line item owned by the
// given seller.
func (r *orderRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE EXISTS (
			SELECT 1 FROM jsonb_array_elements(items) AS item
			WHERE item->>'seller_id' = $1
		)
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, sellerID.String())
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	return checkAffected(result, ErrOrderNotFound)
}

func (r *orderRepository) SetLogistics(ctx context.Context, id, trackingNumber, estimatedDelivery string) error {
	query := `UPDATE orders SET tracking_number = $2, estimated_delivery = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, trackingNumber, estimatedDelivery)
	if err != nil {
		return fmt.Errorf("failed to set order logistics: %w", err)
	}

	return checkAffected(result, ErrOrderNotFound)
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	return orders, rows.Err()
}

func scanOrder(row interface{ Scan(...any) error }) (*domain.Order, error) {
	order := &domain.Order{}
	var items, address []byte
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.CustomerName,
		&order.CustomerEmail,
		&items,
		&order.Total,
		&order.Profit,
		&order.Status,
		&order.PaymentMethod,
		&order.PaymentStatus,
		&address,
		&order.ShippingCost,
		&order.TrackingNumber,
		&order.EstimatedDelivery,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, fmt.Errorf("failed to decode order items: %w", err)
	}
	if len(address) > 0 {
		order.ShippingAddress = &domain.ShippingAddress{}
		if err := json.Unmarshal(address, order.ShippingAddress); err != nil {
			return nil, fmt.Errorf("failed to decode shipping address: %w", err)
		}
	}

	return order, nil
}
