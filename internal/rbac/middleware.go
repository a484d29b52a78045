package rbac

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/scholaris/scholaris/internal/platform/httpx"
	"github.com/scholaris/scholaris/internal/shared"
)

// PermissionResolver resolves granted permissions for a user. Satisfied by
// *Service; tests substitute a stub.
type PermissionResolver interface {
	EffectivePermissions(ctx context.Context, userID int64) ([]string, error)
}

// Middleware wires RBAC authorization guards for HTTP handlers.
type Middleware struct {
	Service PermissionResolver
	Logger  *slog.Logger
}

// RequireAny ensures the current user has at least one of the required
// permissions.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	normalized := normalizePermissions(perms)
	return m.guard(normalized, HasAnyPermission)
}

// RequireAll ensures the current user has all required permissions.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	normalized := normalizePermissions(perms)
	return m.guard(normalized, HasAllPermissions)
}

func (m Middleware) guard(required []string, check func(granted, required []string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(required) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			userID, ok := shared.CurrentUserID(r.Context())
			if !ok {
				httpx.JSON(w, http.StatusUnauthorized, httpx.Envelope{Success: false, Message: "authentication required"})
				return
			}
			granted, err := m.Service.EffectivePermissions(r.Context(), userID)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("rbac resolve permissions", slog.Any("error", err))
				}
				httpx.JSON(w, http.StatusInternalServerError, httpx.Envelope{Success: false, Message: "internal error"})
				return
			}
			if check(granted, required) {
				next.ServeHTTP(w, r)
				return
			}
			httpx.JSON(w, http.StatusForbidden, httpx.Envelope{Success: false, Message: "permission denied"})
		})
	}
}

func normalizePermissions(perms []string) []string {
	unique := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == "" {
			continue
		}
		unique[p] = struct{}{}
	}
	normalized := make([]string, 0, len(unique))
	for p := range unique {
		normalized = append(normalized, p)
	}
	return normalized
}

// HasAnyPermission reports whether granted contains at least one of the
// required permission names, case-insensitively.
func HasAnyPermission(granted, required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := grantedSet(granted)
	for _, r := range required {
		if _, ok := set[strings.ToLower(r)]; ok {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether granted contains every required
// permission name, case-insensitively.
func HasAllPermissions(granted, required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := grantedSet(granted)
	for _, r := range required {
		if _, ok := set[strings.ToLower(r)]; !ok {
			return false
		}
	}
	return true
}

func grantedSet(granted []string) map[string]struct{} {
	set := make(map[string]struct{}, len(granted))
	for _, p := range granted {
		set[strings.ToLower(p)] = struct{}{}
	}
	return set
}
