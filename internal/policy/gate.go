// Package policy maps staff roles to permissions and guards HTTP routes with them.
package policy

import (
	"context"
	"net/http"
	"time"

	"github.com/diewo77/go-retail/auth"
	"github.com/diewo77/go-retail/httpx"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// Gate is the central authorization checkpoint of the API.
type Gate struct {
	resolver *CachedResolver[uint]
}

// NewGate resolves roles from the database and caches them for cacheTTL.
func NewGate(db *gorm.DB, cacheTTL time.Duration) *Gate {
	return NewGateWithResolver(NewCachedResolver[uint](NewDBRoleResolver(db), cacheTTL))
}

func NewGateWithResolver(resolver *CachedResolver[uint]) *Gate {
	return &Gate{resolver: resolver}
}

// Authorize checks that the user in ctx may perform action on resourceType.
func (g *Gate) Authorize(ctx context.Context, resourceType string, action Action) error {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	profile, err := g.resolver.Resolve(ctx, userID)
	if err != nil {
		return err
	}
	if profile == nil || !profile.HasPermission(NewPermission(resourceType, action)) {
		return ErrForbidden
	}
	return nil
}

// InvalidateUser drops the cached profile of a user so the next request reloads their role.
func (g *Gate) InvalidateUser(userID uint) { g.resolver.Invalidate(userID) }

// RequirePermission returns middleware answering 401 without a session and 403 without the permission.
func (g *Gate) RequirePermission(resourceType string, action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch err := g.Authorize(r.Context(), resourceType, action); {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, ErrUnauthenticated):
				httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
			case errors.Is(err, ErrForbidden):
				httpx.JSONError(w, http.StatusForbidden, "forbidden", map[string]string{
					"required": string(NewPermission(resourceType, action)),
				})
			default:
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		})
	}
}
