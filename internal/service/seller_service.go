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
	// ErrNotProductOwner is returned when a seller touches another seller's listing.
	ErrNotProductOwner = errors.New("product belongs to another seller")
)

// ProductInput carries the editable fields of a seller listing.
type ProductInput struct {
	Name        string
	Price       float64
	CostPrice   float64
	Category    string
	ImageURL    string
	Description string
	Colors      []string
	Stock       int
	VideoURL    string
	XPGain      int
	Specs       map[string]string
}

// SellerService manages seller listings with ownership enforcement.
type SellerService interface {
	CreateProduct(ctx context.Context, seller *domain.User, input ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, actor *domain.User, capability domain.Capability, productID string, input ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, actor *domain.User, capability domain.Capability, productID string) error
	Products(ctx context.Context, seller *domain.User) ([]domain.Product, error)
}

type sellerService struct {
	productRepo repository.SellerProductRepository
	logger      *zap.Logger
	now         func() time.Time
}

// NewSellerService creates a new SellerService
func NewSellerService(productRepo repository.SellerProductRepository, logger *zap.Logger) SellerService {
	return &sellerService{
		productRepo: productRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateProduct records a new listing owned by the calling seller.
func (s *sellerService) CreateProduct(ctx context.Context, seller *domain.User, input ProductInput) (*domain.Product, error) {
	now := s.now()
	product := &domain.Product{
		ID:          newProductID(),
		Name:        input.Name,
		Price:       input.Price,
		CostPrice:   input.CostPrice,
		Category:    input.Category,
		ImageURL:    input.ImageURL,
		Description: input.Description,
		Colors:      input.Colors,
		Stock:       input.Stock,
		SellerID:    seller.ID.String(),
		SellerName:  sellerDisplayName(seller),
		VideoURL:    input.VideoURL,
		XPGain:      input.XPGain,
		Specs:       input.Specs,
		IsNew:       true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Seller product created",
		zap.String("product_id", product.ID),
		zap.String("seller_id", product.SellerID),
	)

	return product, nil
}

// UpdateProduct replaces the editable fields of a listing. Admins may edit
// any listing; sellers only their own.
func (s *sellerService) UpdateProduct(ctx context.Context, actor *domain.User, capability domain.Capability, productID string, input ProductInput) (*domain.Product, error) {
	product, err := s.ownedProduct(ctx, actor, capability, productID)
	if err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Price = input.Price
	product.CostPrice = input.CostPrice
	product.Category = input.Category
	product.ImageURL = input.ImageURL
	product.Description = input.Description
	product.Colors = input.Colors
	product.Stock = input.Stock
	product.VideoURL = input.VideoURL
	product.XPGain = input.XPGain
	product.Specs = input.Specs
	product.UpdatedAt = s.now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// DeleteProduct removes a listing, subject to the same ownership rule as updates.
func (s *sellerService) DeleteProduct(ctx context.Context, actor *domain.User, capability domain.Capability, productID string) error {
	if _, err := s.ownedProduct(ctx, actor, capability, productID); err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, productID); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.logger.Info("Seller product deleted", zap.String("product_id", productID))
	return nil
}

// Products lists the caller's own listings.
func (s *sellerService) Products(ctx context.Context, seller *domain.User) ([]domain.Product, error) {
	products, err := s.productRepo.ListBySeller(ctx, seller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seller products: %w", err)
	}
	return products, nil
}

func (s *sellerService) ownedProduct(ctx context.Context, actor *domain.User, capability domain.Capability, productID string) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if capability != domain.CapAdmin && product.SellerID != actor.ID.String() {
		return nil, ErrNotProductOwner
	}

	return product, nil
}

func sellerDisplayName(seller *domain.User) string {
	if seller.StoreName != "" {
		return seller.StoreName
	}
	return seller.Name
}

func newProductID() string {
	return "sp_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:20]
}
