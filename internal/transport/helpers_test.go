package transport

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"nexbuy/internal/config"
	"nexbuy/internal/devicestore"
	"nexbuy/internal/domain"
	"nexbuy/internal/middleware"
	"nexbuy/internal/repository"
	"nexbuy/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Mock repositories for testing
type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	key := strings.ToLower(user.Email)
	if _, exists := m.users[key]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[key] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[strings.ToLower(email)]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	for email, existing := range m.users {
		if existing.ID == user.ID {
			m.users[email] = user
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (m *mockUserRepository) UpdatePoints(ctx context.Context, id uuid.UUID, points, level int) error {
	user, err := m.FindByID(ctx, id)
	if err != nil {
		return err
	}
	user.Points = points
	user.Level = level
	return nil
}

func (m *mockUserRepository) SetLastClaim(ctx context.Context, id uuid.UUID, at time.Time) error {
	user, err := m.FindByID(ctx, id)
	if err != nil {
		return err
	}
	user.LastClaimAt = &at
	return nil
}

func (m *mockUserRepository) SetSellerApplication(ctx context.Context, id uuid.UUID, storeName, storeDescription string) error {
	user, err := m.FindByID(ctx, id)
	if err != nil {
		return err
	}
	user.StoreName = storeName
	user.StoreDescription = storeDescription
	user.SellerStatus = domain.SellerStatusPending
	return nil
}

func (m *mockUserRepository) SetSellerDecision(ctx context.Context, id uuid.UUID, role, sellerStatus string) error {
	user, err := m.FindByID(ctx, id)
	if err != nil {
		return err
	}
	user.Role = role
	user.SellerStatus = sellerStatus
	return nil
}

func (m *mockUserRepository) ListBySellerStatus(ctx context.Context, status string) ([]*domain.User, error) {
	var out []*domain.User
	for _, user := range m.users {
		if user.SellerStatus == status {
			out = append(out, user)
		}
	}
	return out, nil
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{tokens: make(map[string]*domain.RefreshToken)}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

type mockSellerProductRepository struct {
	products map[string]*domain.Product
}

func newMockSellerProductRepository() *mockSellerProductRepository {
	return &mockSellerProductRepository{products: make(map[string]*domain.Product)}
}

func (m *mockSellerProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *mockSellerProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if _, exists := m.products[product.ID]; !exists {
		return repository.ErrProductNotFound
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockSellerProductRepository) Delete(ctx context.Context, id string) error {
	if _, exists := m.products[id]; !exists {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockSellerProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

func (m *mockSellerProductRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]domain.Product, error) {
	var out []domain.Product
	for _, product := range m.products {
		if product.SellerID == sellerID.String() {
			out = append(out, *product)
		}
	}
	return out, nil
}

func (m *mockSellerProductRepository) ListAll(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	for _, product := range m.products {
		out = append(out, *product)
	}
	return out, nil
}

type mockOrderRepository struct {
	orders map[string]*domain.Order
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{orders: make(map[string]*domain.Order)}
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	order, exists := m.orders[id]
	if !exists {
		return nil, repository.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (m *mockOrderRepository) ListAll(ctx context.Context) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, order := range m.orders {
		out = append(out, order)
	}
	return out, nil
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, order := range m.orders {
		if order.UserID == userID {
			out = append(out, order)
		}
	}
	return out, nil
}

func (m *mockOrderRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, order := range m.orders {
		for _, item := range order.Items {
			if item.SellerID == sellerID.String() {
				out = append(out, order)
				break
			}
		}
	}
	return out, nil
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	order, exists := m.orders[id]
	if !exists {
		return repository.ErrOrderNotFound
	}
	order.Status = status
	return nil
}

func (m *mockOrderRepository) SetLogistics(ctx context.Context, id, trackingNumber, estimatedDelivery string) error {
	order, exists := m.orders[id]
	if !exists {
		return repository.ErrOrderNotFound
	}
	order.TrackingNumber = trackingNumber
	order.EstimatedDelivery = estimatedDelivery
	return nil
}

type mockShippingRateRepository struct {
	rates map[string]float64
}

func newMockShippingRateRepository() *mockShippingRateRepository {
	return &mockShippingRateRepository{rates: make(map[string]float64)}
}

func (m *mockShippingRateRepository) All(ctx context.Context) (map[string]float64, error) {
	out := make(map[string]float64, len(m.rates))
	for city, cost := range m.rates {
		out[city] = cost
	}
	return out, nil
}

func (m *mockShippingRateRepository) CostForCity(ctx context.Context, city string) (float64, error) {
	return m.rates[strings.ToLower(city)], nil
}

func (m *mockShippingRateRepository) Upsert(ctx context.Context, city string, cost float64) error {
	m.rates[strings.ToLower(city)] = cost
	return nil
}

func (m *mockShippingRateRepository) Delete(ctx context.Context, city string) error {
	if _, exists := m.rates[strings.ToLower(city)]; !exists {
		return repository.ErrShippingRateNotFound
	}
	delete(m.rates, strings.ToLower(city))
	return nil
}

type mockNotificationRepository struct {
	notifications []repository.Notification
}

func newMockNotificationRepository() *mockNotificationRepository {
	return &mockNotificationRepository{}
}

func (m *mockNotificationRepository) Push(ctx context.Context, buyerName, location, item string) error {
	m.notifications = append(m.notifications, repository.Notification{
		BuyerName: buyerName,
		Location:  location,
		Item:      item,
	})
	return nil
}

func (m *mockNotificationRepository) Recent(ctx context.Context, limit int) ([]repository.Notification, error) {
	if limit <= 0 || limit > len(m.notifications) {
		limit = len(m.notifications)
	}
	return m.notifications[len(m.notifications)-limit:], nil
}

// testRouter wires the full route surface over mock repositories and a
// miniredis-backed device store.
type testRouter struct {
	handler  http.Handler
	users    *mockUserRepository
	sellers  *mockSellerProductRepository
	orders   *mockOrderRepository
	shipping *mockShippingRateRepository
	userSvc  service.UserService
}

func newTestRouter(t *testing.T) *testRouter {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := zap.NewNop()
	store := config.StoreConfig{
		AdminEmail:     "admin@nexbuy.shop",
		SignupBonus:    100,
		CartAddPoints:  10,
		DailyClaimBase: 100,
	}

	userRepo := newMockUserRepository()
	refreshRepo := newMockRefreshTokenRepository()
	sellerRepo := newMockSellerProductRepository()
	orderRepo := newMockOrderRepository()
	shippingRepo := newMockShippingRateRepository()
	notificationRepo := newMockNotificationRepository()
	devices := devicestore.New(client)

	userService := service.NewUserService(userRepo, refreshRepo, "test-secret", store)
	loyaltyService := service.NewLoyaltyService(userRepo, store)
	cartService := service.NewCartService(devices, sellerRepo, shippingRepo, loyaltyService, logger)
	orderService := service.NewOrderService(orderRepo, notificationRepo, cartService, logger)
	sellerService := service.NewSellerService(sellerRepo, logger)
	advisorService := service.NewAdvisorService(config.AdvisorConfig{}, logger)

	authMiddleware := middleware.AuthMiddleware("test-secret", logger)
	viewerMiddleware := middleware.OptionalAuthMiddleware("test-secret", logger)
	profileMiddleware := middleware.WithProfile(userService, logger)
	noLimiter := func(next http.Handler) http.Handler { return next }

	router := chi.NewRouter()
	NewUserHandler(userService, logger).RegisterRoutes(router, authMiddleware, profileMiddleware)
	NewCatalogHandler(cartService, devices, logger).RegisterRoutes(router, viewerMiddleware, profileMiddleware)
	NewCartHandler(cartService, loyaltyService, logger).RegisterRoutes(router, viewerMiddleware, profileMiddleware, authMiddleware)
	NewOrderHandler(orderService, logger).RegisterRoutes(router, authMiddleware, profileMiddleware)
	NewSellerHandler(sellerService, orderService, logger).RegisterRoutes(router, authMiddleware, profileMiddleware)
	NewAdminHandler(userService, orderService, shippingRepo, notificationRepo, logger).RegisterRoutes(router, authMiddleware, profileMiddleware)
	NewAdvisorHandler(advisorService, cartService, logger).RegisterRoutes(router, noLimiter)

	return &testRouter{
		handler:  router,
		users:    userRepo,
		sellers:  sellerRepo,
		orders:   orderRepo,
		shipping: shippingRepo,
		userSvc:  userService,
	}
}
