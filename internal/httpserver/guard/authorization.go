package guard

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"qrorder/internal/auth"
)

// PermissionChecker answers whether a role currently holds the permission for
// an exact (path, method) pair. Implementations query fresh state per call so
// concurrent role/permission edits take effect immediately.
type PermissionChecker interface {
	HasPermission(ctx context.Context, roleID uint, path, method string) (bool, error)
}

// Authorize wraps a handler with a permission check for the route it is
// registered under. The (method, path) pair is attached explicitly at
// registration time and must match the permission rows verbatim.
func Authorize(perms PermissionChecker, lg *zap.SugaredLogger, method, path string, next http.HandlerFunc) http.HandlerFunc {
	required := fmt.Sprintf("%s %s", method, path)
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.FromContext(r.Context())
		if claims == nil {
			// Authentication (or its deliberate absence) is not this guard's
			// concern.
			next.ServeHTTP(w, r)
			return
		}
		ok, err := perms.HasPermission(r.Context(), claims.RoleID, path, method)
		if err != nil {
			lg.Errorw("permission lookup failed", "role_id", claims.RoleID, "route", required, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Error.Internal"})
			return
		}
		if !ok {
			writeJSON(w, http.StatusForbidden, map[string]any{
				"message": "Insufficient permissions to access this resource",
				"details": map[string]any{
					"requiredPermission": required,
					"userRole":           claims.RoleName,
				},
			})
			return
		}
		next.ServeHTTP(w, r)
	}
}
