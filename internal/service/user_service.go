package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nexbuy/internal/config"
	"nexbuy/internal/domain"
	"nexbuy/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10

	// Token expiration times
	AccessTokenExpiration  = 15 * time.Minute
	RefreshTokenExpiration = 7 * 24 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrNotPendingSeller   = errors.New("user has no pending seller application")
)

// ProfileUpdate carries a partial profile sync. Nil fields are left untouched;
// set fields replace the stored value outright.
type ProfileUpdate struct {
	Name             *string
	Points           *int
	Streak           *int
	StoreName        *string
	StoreDescription *string
	IsPremium        *bool
}

// UserService defines the interface for account and session business logic.
type UserService interface {
	Register(ctx context.Context, email, password, name string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *domain.User, err error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken string, err error)
	ValidateToken(tokenString string) (*Claims, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	SyncProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*domain.User, error)
	Capability(user *domain.User) domain.Capability
	ApplyAsSeller(ctx context.Context, userID uuid.UUID, storeName, storeDescription string) error
	PendingSellers(ctx context.Context) ([]*domain.User, error)
	ApproveSeller(ctx context.Context, userID uuid.UUID) error
	RejectSeller(ctx context.Context, userID uuid.UUID) error
}

// Claims represents the JWT claims
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

type userService struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	jwtSecret        string
	store            config.StoreConfig
}

// NewUserService creates a new instance of UserService
func NewUserService(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	jwtSecret string,
	store config.StoreConfig,
) UserService {
	return &userService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		jwtSecret:        jwtSecret,
		store:            store,
	}
}

// Register creates a new account with a hashed password and the sign-up point
// grant. The configured admin address is recognized at registration time.
func (s *userService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	existingUser, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && err != repository.ErrUserNotFound {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, repository.ErrUserAlreadyExists
	}

	hashedPassword, err := s.hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := domain.RoleCustomer
	if domain.IsAdminEmail(email, s.store.AdminEmail) {
		role = domain.RoleAdmin
	}

	points := s.store.SignupBonus
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hashedPassword,
		Name:         name,
		Points:       points,
		Level:        domain.LevelForPoints(points),
		Streak:       1,
		Role:         role,
		SellerStatus: domain.SellerStatusNone,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates a user and returns JWT tokens
func (s *userService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *domain.User, err error) {
	user, err = s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return "", "", nil, ErrInvalidCredentials
		}
		return "", "", nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", nil, ErrInvalidCredentials
	}

	accessToken, err = s.generateAccessToken(user)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err = s.generateRefreshToken(ctx, user)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return accessToken, refreshToken, user, nil
}

// Logout invalidates the refresh token
func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.refreshTokenRepo.Revoke(ctx, refreshToken); err != nil {
		if err == repository.ErrRefreshTokenNotFound {
			// Token doesn't exist, consider it already logged out
			return nil
		}
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// RefreshToken generates a new access token using a valid refresh token
func (s *userService) RefreshToken(ctx context.Context, refreshTokenString string) (newAccessToken string, err error) {
	refreshToken, err := s.refreshTokenRepo.FindByToken(ctx, refreshTokenString)
	if err != nil {
		if err == repository.ErrRefreshTokenNotFound || err == repository.ErrRefreshTokenRevoked {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("failed to find refresh token: %w", err)
	}

	if time.Now().After(refreshToken.ExpiresAt) {
		return "", ErrTokenExpired
	}

	user, err := s.userRepo.FindByID(ctx, refreshToken.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	newAccessToken, err = s.generateAccessToken(user)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	return newAccessToken, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *userService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// SyncProfile applies a partial profile update with full-replace semantics on
// the provided fields and returns the stored result. Level is re-derived
// whenever points change.
func (s *userService) SyncProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Points != nil {
		user.Points = *update.Points
		user.Level = domain.LevelForPoints(user.Points)
	}
	if update.Streak != nil {
		user.Streak = *update.Streak
	}
	if update.StoreName != nil {
		user.StoreName = *update.StoreName
	}
	if update.StoreDescription != nil {
		user.StoreDescription = *update.StoreDescription
	}
	if update.IsPremium != nil {
		user.IsPremium = *update.IsPremium
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to sync profile: %w", err)
	}

	return user, nil
}

// Capability resolves the caller's capability against the configured admin
// address.
func (s *userService) Capability(user *domain.User) domain.Capability {
	return domain.ResolveCapability(user, s.store.AdminEmail)
}

// ApplyAsSeller records a seller application and moves the user to pending.
func (s *userService) ApplyAsSeller(ctx context.Context, userID uuid.UUID, storeName, storeDescription string) error {
	if err := s.userRepo.SetSellerApplication(ctx, userID, storeName, storeDescription); err != nil {
		return fmt.Errorf("failed to apply as seller: %w", err)
	}
	return nil
}

// PendingSellers lists users awaiting an admin decision.
func (s *userService) PendingSellers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.userRepo.ListBySellerStatus(ctx, domain.SellerStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending sellers: %w", err)
	}
	return users, nil
}

// ApproveSeller escalates a pending applicant to an approved seller.
func (s *userService) ApproveSeller(ctx context.Context, userID uuid.UUID) error {
	if err := s.requirePending(ctx, userID); err != nil {
		return err
	}
	if err := s.userRepo.SetSellerDecision(ctx, userID, domain.RoleSeller, domain.SellerStatusApproved); err != nil {
		return fmt.Errorf("failed to approve seller: %w", err)
	}
	return nil
}

// RejectSeller marks a pending application rejected. The role is untouched;
// the applicant stays a customer.
func (s *userService) RejectSeller(ctx context.Context, userID uuid.UUID) error {
	if err := s.requirePending(ctx, userID); err != nil {
		return err
	}
	if err := s.userRepo.SetSellerDecision(ctx, userID, domain.RoleCustomer, domain.SellerStatusRejected); err != nil {
		return fmt.Errorf("failed to reject seller: %w", err)
	}
	return nil
}

func (s *userService) requirePending(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load applicant: %w", err)
	}
	if user.SellerStatus != domain.SellerStatusPending {
		return ErrNotPendingSeller
	}
	return nil
}

func (s *userService) hashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// generateAccessToken generates a JWT access token with user ID and role claims
func (s *userService) generateAccessToken(user *domain.User) (string, error) {
	expirationTime := time.Now().Add(AccessTokenExpiration)
	claims := &Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// generateRefreshToken generates a refresh token and stores it in the database
func (s *userService) generateRefreshToken(ctx context.Context, user *domain.User) (string, error) {
	tokenString := uuid.New().String()

	refreshToken := &domain.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		Token:     tokenString,
		ExpiresAt: time.Now().Add(RefreshTokenExpiration),
		CreatedAt: time.Now(),
		Revoked:   false,
	}

	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return "", err
	}

	return tokenString, nil
}
