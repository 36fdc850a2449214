package domain

import (
	"time"

	"github.com/google/uuid"
)

// User roles.
const (
	RoleCustomer = "customer"
	RoleSeller   = "seller"
	RoleAdmin    = "admin"
)

// Seller application statuses.
const (
	SellerStatusNone     = "none"
	SellerStatusPending  = "pending"
	SellerStatusApproved = "approved"
	SellerStatusRejected = "rejected"
)

// PointsPerLevel is the cumulative point span of a single loyalty level.
const PointsPerLevel = 1000

// User is a storefront account. Points accrue from cart-adds and daily claims;
// Level is always derived from Points and stored denormalized for display.
type User struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	Email            string     `json:"email" db:"email"`
	PasswordHash     string     `json:"-" db:"password_hash"`
	Name             string     `json:"name" db:"name"`
	Points           int        `json:"points" db:"points"`
	Level            int        `json:"level" db:"level"`
	Streak           int        `json:"streak" db:"streak"`
	Role             string     `json:"role" db:"role"`
	SellerStatus     string     `json:"seller_status" db:"seller_status"`
	StoreName        string     `json:"store_name,omitempty" db:"store_name"`
	StoreDescription string     `json:"store_description,omitempty" db:"store_description"`
	IsPremium        bool       `json:"is_premium" db:"is_premium"`
	LastClaimAt      *time.Time `json:"last_claim_at,omitempty" db:"last_claim_at"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// LevelForPoints computes the loyalty level for a cumulative point total.
// Points 0-999 are level 1, 1000-1999 level 2, and so on.
func LevelForPoints(points int) int {
	if points < 0 {
		points = 0
	}
	return points/PointsPerLevel + 1
}

// ProgressPercent reports how far the user is into the current level,
// as a percentage of the next level boundary.
func (u *User) ProgressPercent() float64 {
	p := u.Points
	if p < 0 {
		p = 0
	}
	return float64(p%PointsPerLevel) / 10
}

// RefreshToken is a stored opaque token used to mint new access tokens.
type RefreshToken struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Token     string    `db:"token"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
	Revoked   bool      `db:"revoked"`
}
