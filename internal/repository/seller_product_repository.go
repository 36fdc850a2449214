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

var ErrProductNotFound = errors.New("product not found")

// SellerProductRepository defines the interface for seller-submitted products.
type SellerProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]domain.Product, error)
	ListAll(ctx context.Context) ([]domain.Product, error)
}

type sellerProductRepository struct {
	db *sql.DB
}

// NewSellerProductRepository creates a new instance of SellerProductRepository
func NewSellerProductRepository(db *sql.DB) SellerProductRepository {
	return &sellerProductRepository{db: db}
}

const sellerProductColumns = `id, seller_id, seller_name, name, price, cost_price, category,
	image_url, rating, description, is_new, is_exclusive, colors, stock, video_url,
	xp_gain, specs, created_at, updated_at`

func (r *sellerProductRepository) Create(ctx context.Context, product *domain.Product) error {
	colors, specs, err := marshalProductJSON(product)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO seller_products (` + sellerProductColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.SellerID,
		product.SellerName,
		product.Name,
		product.Price,
		product.CostPrice,
		product.Category,
		product.ImageURL,
		product.Rating,
		product.Description,
		product.IsNew,
		product.IsExclusive,
		colors,
		product.Stock,
		product.VideoURL,
		product.XPGain,
		specs,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create seller product: %w", err)
	}

	return nil
}

func (r *sellerProductRepository) Update(ctx context.Context, product *domain.Product) error {
	colors, specs, err := marshalProductJSON(product)
	if err != nil {
		return err
	}

	query := `
		UPDATE seller_products
		SET name = $2, price = $3, cost_price = $4, category = $5, image_url = $6,
		    rating = $7, description = $8, is_new = $9, is_exclusive = $10,
		    colors = $11, stock = $12, video_url = $13, xp_gain = $14, specs = $15,
		    updated_at = $16
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Price,
		product.CostPrice,
		product.Category,
		product.ImageURL,
		product.Rating,
		product.Description,
		product.IsNew,
		product.IsExclusive,
		colors,
		product.Stock,
		product.VideoURL,
		product.XPGain,
		specs,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update seller product: %w", err)
	}

	return checkAffected(result, ErrProductNotFound)
}

func (r *sellerProductRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM seller_products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete seller product: %w", err)
	}

	return checkAffected(result, ErrProductNotFound)
}

func (r *sellerProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + sellerProductColumns + ` FROM seller_products WHERE id = $1`

	product, err := scanSellerProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find seller product: %w", err)
	}

	return product, nil
}

func (r *sellerProductRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]domain.Product, error) {
	query := `SELECT ` + sellerProductColumns + ` FROM seller_products WHERE seller_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, sellerID)
}

func (r *sellerProductRepository) ListAll(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + sellerProductColumns + ` FROM seller_products ORDER BY created_at DESC`
	return r.list(ctx, query)
}

func (r *sellerProductRepository) list(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list seller products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := scanSellerProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan seller product: %w", err)
		}
		products = append(products, *product)
	}

	return products, rows.Err()
}

func scanSellerProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	product := &domain.Product{}
	var colors, specs []byte
	err := row.Scan(
		&product.ID,
		&product.SellerID,
		&product.SellerName,
		&product.Name,
		&product.Price,
		&product.CostPrice,
		&product.Category,
		&product.ImageURL,
		&product.Rating,
		&product.Description,
		&product.IsNew,
		&product.IsExclusive,
		&colors,
		&product.Stock,
		&product.VideoURL,
		&product.XPGain,
		&specs,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(colors) > 0 {
		if err := json.Unmarshal(colors, &product.Colors); err != nil {
			return nil, fmt.Errorf("failed to decode colors: %w", err)
		}
	}
	if len(specs) > 0 {
		if err := json.Unmarshal(specs, &product.Specs); err != nil {
			return nil, fmt.Errorf("failed to decode specs: %w", err)
		}
	}

	return product, nil
}

func marshalProductJSON(product *domain.Product) (colors, specs []byte, err error) {
	if product.Colors == nil {
		colors = []byte("[]")
	} else if colors, err = json.Marshal(product.Colors); err != nil {
		return nil, nil, fmt.Errorf("failed to encode colors: %w", err)
	}
	if product.Specs == nil {
		specs = []byte("{}")
	} else if specs, err = json.Marshal(product.Specs); err != nil {
		return nil, nil, fmt.Errorf("failed to encode specs: %w", err)
	}
	return colors, specs, nil
}
