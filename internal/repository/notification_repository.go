package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Notification is a cosmetic "someone bought X" feed entry pushed on order
// creation. Failures writing these never block checkout.
type Notification struct {
	ID        int64     `json:"id"`
	BuyerName string    `json:"buyer_name"`
	Location  string    `json:"location"`
	Item      string    `json:"item"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationRepository stores the purchase-activity feed.
type NotificationRepository interface {
	Push(ctx context.Context, buyerName, location, item string) error
	Recent(ctx context.Context, limit int) ([]Notification, error)
}

type notificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository creates a new instance of NotificationRepository
func NewNotificationRepository(db *sql.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Push(ctx context.Context, buyerName, location, item string) error {
	query := `INSERT INTO notifications (buyer_name, location, item, created_at) VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query, buyerName, location, item, time.Now())
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}

	return nil
}

func (r *notificationRepository) Recent(ctx context.Context, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, buyer_name, location, item, created_at FROM notifications ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.BuyerName, &n.Location, &n.Item, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}
