package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrShippingRateNotFound = errors.New("shipping rate not found")

// ShippingRateRepository stores the city-keyed shipping cost table.
type ShippingRateRepository interface {
	All(ctx context.Context) (map[string]float64, error)
	CostForCity(ctx context.Context, city string) (float64, error)
	Upsert(ctx context.Context, city string, cost float64) error
	Delete(ctx context.Context, city string) error
}

type shippingRateRepository struct {
	db *sql.DB
}

// NewShippingRateRepository creates a new instance of ShippingRateRepository
func NewShippingRateRepository(db *sql.DB) ShippingRateRepository {
	return &shippingRateRepository{db: db}
}

func (r *shippingRateRepository) All(ctx context.Context) (map[string]float64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT city, cost FROM shipping_rates ORDER BY city`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shipping rates: %w", err)
	}
	defer rows.Close()

	rates := make(map[string]float64)
	for rows.Next() {
		var city string
		var cost float64
		if err := rows.Scan(&city, &cost); err != nil {
			return nil, fmt.Errorf("failed to scan shipping rate: %w", err)
		}
		rates[city] = cost
	}

	return rates, rows.Err()
}

// CostForCity matches on city name, case-insensitively. An unknown city is a
// zero-cost match, not an error.
func (r *shippingRateRepository) CostForCity(ctx context.Context, city string) (float64, error) {
	var cost float64
	err := r.db.QueryRowContext(
		ctx,
		`SELECT cost FROM shipping_rates WHERE LOWER(city) = LOWER($1)`,
		city,
	).Scan(&cost)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to look up shipping cost: %w", err)
	}

	return cost, nil
}

func (r *shippingRateRepository) Upsert(ctx context.Context, city string, cost float64) error {
	query := `
		INSERT INTO shipping_rates (city, cost, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (city) DO UPDATE SET cost = EXCLUDED.cost, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, city, cost, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert shipping rate: %w", err)
	}

	return nil
}

func (r *shippingRateRepository) Delete(ctx context.Context, city string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM shipping_rates WHERE LOWER(city) = LOWER($1)`, city)
	if err != nil {
		return fmt.Errorf("failed to delete shipping rate: %w", err)
	}

	return checkAffected(result, ErrShippingRateNotFound)
}
