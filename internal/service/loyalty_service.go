package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nexbuy/internal/config"
	"nexbuy/internal/domain"
	"nexbuy/internal/repository"
)

var ErrAlreadyClaimedToday = errors.New("daily bonus already claimed today")

// AwardResult reports an applied loyalty award.
type AwardResult struct {
	Awarded         int     `json:"awarded"`
	Points          int     `json:"points"`
	Level           int     `json:"level"`
	ProgressPercent float64 `json:"progress_percent"`
}

// LoyaltyService owns point accrual and level derivation. Awards are doubled
// for premium members and never applied to guests.
type LoyaltyService interface {
	Award(ctx context.Context, user *domain.User, basePoints int) (*AwardResult, error)
	ClaimDaily(ctx context.Context, user *domain.User) (*AwardResult, error)
	CartAddPoints() int
}

type loyaltyService struct {
	userRepo repository.UserRepository
	store    config.StoreConfig
	now      func() time.Time
}

// NewLoyaltyService creates a new instance of LoyaltyService
func NewLoyaltyService(userRepo repository.UserRepository, store config.StoreConfig) LoyaltyService {
	return &loyaltyService{
		userRepo: userRepo,
		store:    store,
		now:      time.Now,
	}
}

// Award grants basePoints to the user, doubled for premium members, and
// persists the new cumulative total and derived level. A nil user (guest) gets
// a zero-point result and no write.
func (s *loyaltyService) Award(ctx context.Context, user *domain.User, basePoints int) (*AwardResult, error) {
	if user == nil {
		return &AwardResult{}, nil
	}

	awarded := basePoints
	if user.IsPremium {
		awarded = basePoints * 2
	}

	newPoints := user.Points + awarded
	newLevel := domain.LevelForPoints(newPoints)

	if err := s.userRepo.UpdatePoints(ctx, user.ID, newPoints, newLevel); err != nil {
		return nil, fmt.Errorf("failed to persist point award: %w", err)
	}

	user.Points = newPoints
	user.Level = newLevel

	return &AwardResult{
		Awarded:         awarded,
		Points:          newPoints,
		Level:           newLevel,
		ProgressPercent: user.ProgressPercent(),
	}, nil
}

// ClaimDaily grants the daily bonus at most once per UTC day, enforced against
// the stored last-claim timestamp rather than any client-side flag.
func (s *loyaltyService) ClaimDaily(ctx context.Context, user *domain.User) (*AwardResult, error) {
	if user == nil {
		return &AwardResult{}, nil
	}

	now := s.now().UTC()
	if user.LastClaimAt != nil {
		last := user.LastClaimAt.UTC()
		if last.Year() == now.Year() && last.YearDay() == now.YearDay() {
			return nil, ErrAlreadyClaimedToday
		}
	}

	// The claim is recorded before the points are granted: a partial failure
	// must never leave the day claimable again with points already committed.
	if err := s.userRepo.SetLastClaim(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record daily claim: %w", err)
	}
	user.LastClaimAt = &now

	result, err := s.Award(ctx, user, s.store.DailyClaimBase)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// CartAddPoints returns the base award for adding an item to the cart.
func (s *loyaltyService) CartAddPoints() int {
	return s.store.CartAddPoints
}
