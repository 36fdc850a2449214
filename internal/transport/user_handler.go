package transport

import (
	"encoding/json"
	"net/http"

	"nexbuy/internal/domain"
	"nexbuy/internal/middleware"
	"nexbuy/internal/repository"
	"nexbuy/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RegisterRequest represents the sign-up request payload
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
}

// LoginRequest represents the sign-in request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest represents the token refresh request payload
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// SyncProfileRequest carries a partial profile update. Absent fields are
// left untouched; present fields replace the stored value.
type SyncProfileRequest struct {
	Name             *string `json:"name,omitempty"`
	Points           *int    `json:"points,omitempty" validate:"omitempty,gte=0"`
	Streak           *int    `json:"streak,omitempty" validate:"omitempty,gte=0"`
	StoreName        *string `json:"store_name,omitempty"`
	StoreDescription *string `json:"store_description,omitempty"`
	IsPremium        *bool   `json:"is_premium,omitempty"`
}

// SellerApplicationRequest is a customer's request for listing capability.
type SellerApplicationRequest struct {
	StoreName        string `json:"store_name" validate:"required,min=2,max=100"`
	StoreDescription string `json:"store_description" validate:"required,min=10"`
}

// LoginResponse represents the sign-in response
type LoginResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         UserProfile `json:"user"`
}

// RefreshResponse represents the token refresh response
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// UserProfile is the user payload returned to clients.
type UserProfile struct {
	ID               string  `json:"id"`
	Email            string  `json:"email"`
	Name             string  `json:"name"`
	Points           int     `json:"points"`
	Level            int     `json:"level"`
	Streak           int     `json:"streak"`
	Role             string  `json:"role"`
	SellerStatus     string  `json:"seller_status"`
	StoreName        string  `json:"store_name,omitempty"`
	StoreDescription string  `json:"store_description,omitempty"`
	IsPremium        bool    `json:"is_premium"`
	Capability       string  `json:"capability"`
	ProgressPercent  float64 `json:"progress_percent"`
}

// UserHandler handles HTTP requests for accounts and sessions.
type UserHandler struct {
	userService service.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// RegisterRoutes registers all user routes
func (h *UserHandler) RegisterRoutes(r chi.Router, authMiddleware, profileMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/users", func(r chi.Router) {
		// Public routes
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(profileMiddleware)
			r.Post("/logout", h.Logout)
			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.SyncProfile)
			r.Post("/seller-application", h.ApplyAsSeller)
		})
	})
}

func (h *UserHandler) profileFor(user *domain.User) UserProfile {
	return profileView(h.userService, user)
}

func profileView(userService service.UserService, user *domain.User) UserProfile {
	return UserProfile{
		ID:               user.ID.String(),
		Email:            user.Email,
		Name:             user.Name,
		Points:           user.Points,
		Level:            user.Level,
		Streak:           user.Streak,
		Role:             user.Role,
		SellerStatus:     user.SellerStatus,
		StoreName:        user.StoreName,
		StoreDescription: user.StoreDescription,
		IsPremium:        user.IsPremium,
		Capability:       string(userService.Capability(user)),
		ProgressPercent:  user.ProgressPercent(),
	}
}

// Register handles sign-up
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Registration validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userService.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if err == repository.ErrUserAlreadyExists {
			middleware.RespondWithError(w, http.StatusConflict, "user with this email already exists")
			return
		}

		h.logger.Error("Registration failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	h.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, h.profileFor(user))
}

// Login handles sign-in
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	accessToken, refreshToken, user, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if err == service.ErrInvalidCredentials {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}

		h.logger.Error("Login failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to login")
		return
	}

	response := LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         h.profileFor(user),
	}

	h.logger.Info("User logged in", zap.String("user_id", user.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// Logout revokes the refresh token
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.userService.Logout(r.Context(), req.RefreshToken); err != nil {
		h.logger.Error("Logout failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to logout")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// RefreshToken mints a new access token
func (h *UserHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	accessToken, err := h.userService.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		if err == service.ErrInvalidToken || err == service.ErrTokenExpired {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid or expired refresh token")
			return
		}

		h.logger.Error("Token refresh failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to refresh token")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, RefreshResponse{AccessToken: accessToken})
}

// GetProfile returns the caller's resolved profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "profile not resolved")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, h.profileFor(user))
}

// SyncProfile applies a partial profile update
func (h *UserHandler) SyncProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "profile not resolved")
		return
	}

	var req SyncProfileRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.userService.SyncProfile(r.Context(), user.ID, service.ProfileUpdate{
		Name:             req.Name,
		Points:           req.Points,
		Streak:           req.Streak,
		StoreName:        req.StoreName,
		StoreDescription: req.StoreDescription,
		IsPremium:        req.IsPremium,
	})
	if err != nil {
		h.logger.Error("Profile sync failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to sync profile")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, h.profileFor(updated))
}

// ApplyAsSeller records a seller application and moves the caller to pending
func (h *UserHandler) ApplyAsSeller(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "profile not resolved")
		return
	}

	var req SellerApplicationRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.userService.ApplyAsSeller(r.Context(), user.ID, req.StoreName, req.StoreDescription); err != nil {
		h.logger.Error("Seller application failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to submit seller application")
		return
	}

	h.logger.Info("Seller application submitted", zap.String("user_id", user.ID.String()))
	middleware.RespondWithJSON(w, http.StatusAccepted, map[string]string{"seller_status": domain.SellerStatusPending})
}
