package service

import (
	"context"
	"testing"

	"nexbuy/internal/config"
	"nexbuy/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"golang.org/x/crypto/bcrypt"
)

func testStoreConfig() config.StoreConfig {
	return config.StoreConfig{
		AdminEmail:     "admin@nexbuy.shop",
		SignupBonus:    100,
		CartAddPoints:  10,
		DailyClaimBase: 100,
	}
}

func newTestUserService() (UserService, *mockUserRepository, *mockRefreshTokenRepository) {
	userRepo := newMockUserRepository()
	refreshTokenRepo := newMockRefreshTokenRepository()
	return NewUserService(userRepo, refreshTokenRepo, "test-secret", testStoreConfig()), userRepo, refreshTokenRepo
}

func TestProperty_RegistrationCreatesHashedPasswords(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("passwords are hashed with bcrypt and not stored as plaintext", prop.ForAll(
		func(email string, password string, name string) bool {
			service, _, _ := newTestUserService()
			ctx := context.Background()

			user, err := service.Register(ctx, email, password, name)
			if err != nil {
				// If registration fails, skip this test case
				return true
			}

			if user.PasswordHash == password {
				t.Logf("FAIL: Password stored as plaintext for email %s", email)
				return false
			}

			err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
			if err != nil {
				t.Logf("FAIL: Password hash is not a valid bcrypt hash or doesn't match: %v", err)
				return false
			}

			return true
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.com`),
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) >= 8 }),
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) >= 1 }),
	))

	properties.TestingRun(t)
}

func TestRegisterGrantsSignupBonus(t *testing.T) {
	service, _, _ := newTestUserService()
	ctx := context.Background()

	user, err := service.Register(ctx, "shopper@example.com", "password123", "Shopper")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if user.Points != 100 {
		t.Errorf("expected 100 signup points, got %d", user.Points)
	}
	if user.Level != 1 {
		t.Errorf("expected level 1, got %d", user.Level)
	}
	if user.Streak != 1 {
		t.Errorf("expected streak 1, got %d", user.Streak)
	}
	if user.Role != domain.RoleCustomer {
		t.Errorf("expected customer role, got %s", user.Role)
	}
}

func TestRegisterAdminEmailGetsAdminRole(t *testing.T) {
	service, _, _ := newTestUserService()
	ctx := context.Background()

	user, err := service.Register(ctx, "Admin@Nexbuy.shop", "password123", "Admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if user.Role != domain.RoleAdmin {
		t.Errorf("expected admin role for configured email, got %s", user.Role)
	}
	if service.Capability(user) != domain.CapAdmin {
		t.Errorf("expected admin capability, got %s", service.Capability(user))
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	service, _, _ := newTestUserService()
	ctx := context.Background()

	if _, err := service.Register(ctx, "shopper@example.com", "password123", "Shopper"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, _, _, err := service.Login(ctx, "shopper@example.com", "wrong-password"); err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginIssuesValidTokens(t *testing.T) {
	service, _, _ := newTestUserService()
	ctx := context.Background()

	registered, err := service.Register(ctx, "shopper@example.com", "password123", "Shopper")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	accessToken, refreshToken, user, err := service.Login(ctx, "shopper@example.com", "password123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("login returned a different user")
	}

	claims, err := service.ValidateToken(accessToken)
	if err != nil {
		t.Fatalf("access token did not validate: %v", err)
	}
	if claims.UserID != registered.ID {
		t.Errorf("claims carry wrong user id")
	}

	newAccess, err := service.RefreshToken(ctx, refreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if _, err := service.ValidateToken(newAccess); err != nil {
		t.Fatalf("refreshed token did not validate: %v", err)
	}

	// Refresh tokens stop working after logout
	if err := service.Logout(ctx, refreshToken); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := service.RefreshToken(ctx, refreshToken); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken after logout, got %v", err)
	}
}

func TestSellerApplicationLifecycle(t *testing.T) {
	service, _, _ := newTestUserService()
	ctx := context.Background()

	user, err := service.Register(ctx, "seller@example.com", "password123", "Seller")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if service.Capability(user) != domain.CapCustomer {
		t.Fatalf("expected customer capability before applying, got %s", service.Capability(user))
	}

	if err := service.ApplyAsSeller(ctx, user.ID, "Gadget Hut", "Handpicked gadgets and accessories"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	applied, err := service.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied.SellerStatus != domain.SellerStatusPending {
		t.Errorf("expected pending status, got %s", applied.SellerStatus)
	}
	if service.Capability(applied) != domain.CapPendingSeller {
		t.Errorf("expected pendingSeller capability, got %s", service.Capability(applied))
	}

	if err := service.ApproveSeller(ctx, user.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	approved, err := service.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if approved.Role != domain.RoleSeller || approved.SellerStatus != domain.SellerStatusApproved {
		t.Errorf("expected approved seller, got role=%s status=%s", approved.Role, approved.SellerStatus)
	}
	if service.Capability(approved) != domain.CapApprovedSeller {
		t.Errorf("expected approvedSeller capability, got %s", service.Capability(approved))
	}
}

func TestRejectedSellerStaysCustomer(t *testing.T) {
	service, _, _ := newTestUserService()
	ctx := context.Background()

	user, err := service.Register(ctx, "seller@example.com", "password123", "Seller")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := service.ApplyAsSeller(ctx, user.ID, "Gadget Hut", "Handpicked gadgets and accessories"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := service.RejectSeller(ctx, user.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rejected, err := service.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rejected.Role != domain.RoleCustomer {
		t.Errorf("rejected applicant should stay a customer, got %s", rejected.Role)
	}
	if service.Capability(rejected) != domain.CapCustomer {
		t.Errorf("expected customer capability after rejection, got %s", service.Capability(rejected))
	}

	// A rejected applicant may apply again
	if err := service.ApplyAsSeller(ctx, user.ID, "Gadget Hut", "Handpicked gadgets and accessories"); err != nil {
		t.Fatalf("resubmission should be allowed: %v", err)
	}
}

func TestDecidingNonPendingApplicationFails(t *testing.T) {
	service, _, _ := newTestUserService()
	ctx := context.Background()

	user, err := service.Register(ctx, "shopper@example.com", "password123", "Shopper")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := service.ApproveSeller(ctx, user.ID); err != ErrNotPendingSeller {
		t.Errorf("expected ErrNotPendingSeller, got %v", err)
	}
	if err := service.RejectSeller(ctx, user.ID); err != ErrNotPendingSeller {
		t.Errorf("expected ErrNotPendingSeller, got %v", err)
	}
}

func TestSyncProfileRederivesLevel(t *testing.T) {
	service, _, _ := newTestUserService()
	ctx := context.Background()

	user, err := service.Register(ctx, "shopper@example.com", "password123", "Shopper")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	points := 2500
	updated, err := service.SyncProfile(ctx, user.ID, ProfileUpdate{Points: &points})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Points != 2500 {
		t.Errorf("expected 2500 points, got %d", updated.Points)
	}
	if updated.Level != 3 {
		t.Errorf("expected level 3 for 2500 points, got %d", updated.Level)
	}
}
