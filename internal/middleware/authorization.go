package middleware

import (
	"context"
	"net/http"

	"nexbuy/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	UserKey       contextKey = "user"
	CapabilityKey contextKey = "capability"
)

// ProfileResolver loads a full profile and derives its capability. Satisfied
// by service.UserService.
type ProfileResolver interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	Capability(user *domain.User) domain.Capability
}

// WithProfile resolves the authenticated user's full profile and capability
// and stores both in the request context. Must run after AuthMiddleware.
// A credential whose profile cannot be loaded is treated as a guest.
func WithProfile(resolver ProfileResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if idStr, ok := GetUserID(ctx); ok {
				if id, err := uuid.Parse(idStr); err == nil {
					if user, err := resolver.GetUserByID(ctx, id); err == nil {
						ctx = context.WithValue(ctx, UserKey, user)
						ctx = context.WithValue(ctx, CapabilityKey, resolver.Capability(user))
						next.ServeHTTP(w, r.WithContext(ctx))
						return
					}
					logger.Warn("Failed to resolve profile for credential", zap.String("user_id", idStr))
				}
			}

			ctx = context.WithValue(ctx, CapabilityKey, domain.CapGuest)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser extracts the resolved profile from the request context.
func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserKey).(*domain.User)
	return user, ok
}

// GetCapability extracts the resolved capability, defaulting to guest.
func GetCapability(ctx context.Context) domain.Capability {
	if capability, ok := ctx.Value(CapabilityKey).(domain.Capability); ok {
		return capability
	}
	return domain.CapGuest
}

// RequireAdmin gates a route on admin capability.
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return requireCapability(logger, "admin console", func(c domain.Capability) bool {
		return c.IsAdmin()
	})
}

// RequireSellerConsole gates a route on full seller-console access: admins
// and approved sellers only. Pending sellers and customers are rejected.
func RequireSellerConsole(logger *zap.Logger) func(http.Handler) http.Handler {
	return requireCapability(logger, "seller console", func(c domain.Capability) bool {
		return c.CanManageSellerConsole()
	})
}

func requireCapability(logger *zap.Logger, resource string, allowed func(domain.Capability) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			capability := GetCapability(r.Context())
			if !allowed(capability) {
				logger.Warn("Capability check failed",
					zap.String("resource", resource),
					zap.String("capability", string(capability)),
				)
				respondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
