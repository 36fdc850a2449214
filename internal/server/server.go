package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"nexbuy/internal/config"
	"nexbuy/internal/devicestore"
	custommiddleware "nexbuy/internal/middleware"
	"nexbuy/internal/repository"
	"nexbuy/internal/service"
	"nexbuy/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, redisClient *redis.Client) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env == "development"))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	sellerProductRepo := repository.NewSellerProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	shippingRateRepo := repository.NewShippingRateRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Device-scoped state (cart, wishlist, currency preference)
	devices := devicestore.New(redisClient)

	// Initialize services
	userService := service.NewUserService(userRepo, refreshTokenRepo, cfg.JWT.Secret, cfg.Store)
	loyaltyService := service.NewLoyaltyService(userRepo, cfg.Store)
	cartService := service.NewCartService(devices, sellerProductRepo, shippingRateRepo, loyaltyService, logger)
	orderService := service.NewOrderService(orderRepo, notificationRepo, cartService, logger)
	sellerService := service.NewSellerService(sellerProductRepo, logger)
	advisorService := service.NewAdvisorService(cfg.Advisor, logger)

	// Initialize handlers
	userHandler := transport.NewUserHandler(userService, logger)
	catalogHandler := transport.NewCatalogHandler(cartService, devices, logger)
	cartHandler := transport.NewCartHandler(cartService, loyaltyService, logger)
	orderHandler := transport.NewOrderHandler(orderService, logger)
	sellerHandler := transport.NewSellerHandler(sellerService, orderService, logger)
	adminHandler := transport.NewAdminHandler(userService, orderService, shippingRateRepo, notificationRepo, logger)
	advisorHandler := transport.NewAdvisorHandler(advisorService, cartService, logger)

	// Auth middleware: required for account routes, optional where guests
	// may browse but signed-in shoppers get extra behavior
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	viewerMiddleware := custommiddleware.OptionalAuthMiddleware(cfg.JWT.Secret, logger)
	profileMiddleware := custommiddleware.WithProfile(userService, logger)

	// Rate limit sign-in attempts and advisor calls
	authLimiter := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 20,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit:auth",
	}, logger)
	adviceLimiter := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 10,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit:advice",
	}, logger)

	// Register routes
	router.Group(func(r chi.Router) {
		r.Use(authLimiter)
		userHandler.RegisterRoutes(r, authMiddleware, profileMiddleware)
	})
	catalogHandler.RegisterRoutes(router, viewerMiddleware, profileMiddleware)
	cartHandler.RegisterRoutes(router, viewerMiddleware, profileMiddleware, authMiddleware)
	orderHandler.RegisterRoutes(router, authMiddleware, profileMiddleware)
	sellerHandler.RegisterRoutes(router, authMiddleware, profileMiddleware)
	adminHandler.RegisterRoutes(router, authMiddleware, profileMiddleware)
	advisorHandler.RegisterRoutes(router, adviceLimiter)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	// Close Redis connection
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
