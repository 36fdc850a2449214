package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"nexbuy/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with this email already exists")
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdatePoints(ctx context.Context, id uuid.UUID, points, level int) error
	SetLastClaim(ctx context.Context, id uuid.UUID, at time.Time) error
	SetSellerApplication(ctx context.Context, id uuid.UUID, storeName, storeDescription string) error
	SetSellerDecision(ctx context.Context, id uuid.UUID, role, sellerStatus string) error
	ListBySellerStatus(ctx context.Context, status string) ([]*domain.User, error)
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new instance of UserRepository
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, password_hash, name, points, level, streak, role,
	seller_status, store_name, store_description, is_premium, last_claim_at,
	created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Points,
		&user.Level,
		&user.Streak,
		&user.Role,
		&user.SellerStatus,
		&user.StoreName,
		&user.StoreDescription,
		&user.IsPremium,
		&user.LastClaimAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create inserts a new user using parameterized queries
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, name, points, level, streak, role,
			seller_status, store_name, store_description, is_premium, last_claim_at,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Points,
		user.Level,
		user.Streak,
		user.Role,
		user.SellerStatus,
		user.StoreName,
		user.StoreDescription,
		user.IsPremium,
		user.LastClaimAt,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		// Unique constraint violation on email
		if strings.Contains(err.Error(), "users_email_key") {
			return ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// FindByEmail retrieves a user by email
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	return user, nil
}

// FindByID retrieves a user by ID
func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

// Update replaces the mutable profile fields of an existing user.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET name = $2, points = $3, level = $4, streak = $5, role = $6,
		    seller_status = $7, store_name = $8, store_description = $9,
		    is_premium = $10, updated_at = $11
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Name,
		user.Points,
		user.Level,
		user.Streak,
		user.Role,
		user.SellerStatus,
		user.StoreName,
		user.StoreDescription,
		user.IsPremium,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return checkAffected(result, ErrUserNotFound)
}

// UpdatePoints writes a new cumulative point total and derived level.
func (r *userRepository) UpdatePoints(ctx context.Context, id uuid.UUID, points, level int) error {
	query := `UPDATE users SET points = $2, level = $3, updated_at = $4 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, points, level, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update points: %w", err)
	}

	return checkAffected(result, ErrUserNotFound)
}

// SetLastClaim records the timestamp of the latest daily bonus claim.
func (r *userRepository) SetLastClaim(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE users SET last_claim_at = $2, updated_at = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to set last claim: %w", err)
	}

	return checkAffected(result, ErrUserNotFound)
}

// SetSellerApplication marks the user as a pending seller with their store details.
func (r *userRepository) SetSellerApplication(ctx context.Context, id uuid.UUID, storeName, storeDescription string) error {
	query := `
		UPDATE users
		SET seller_status = $2, store_name = $3, store_description = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, domain.SellerStatusPending, storeName, storeDescription, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set seller application: %w", err)
	}

	return checkAffected(result, ErrUserNotFound)
}

// SetSellerDecision writes an admin approval or rejection.
func (r *userRepository) SetSellerDecision(ctx context.Context, id uuid.UUID, role, sellerStatus string) error {
	query := `UPDATE users SET role = $2, seller_status = $3, updated_at = $4 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, role, sellerStatus, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set seller decision: %w", err)
	}

	return checkAffected(result, ErrUserNotFound)
}

// ListBySellerStatus returns users with the given seller application status.
func (r *userRepository) ListBySellerStatus(ctx context.Context, status string) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE seller_status = $1 ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list users by seller status: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

func checkAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
