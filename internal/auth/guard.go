package auth

import (
	"log/slog"
	"net/http"

	"github.com/IshuSinghSE/wallpaperz-sub000/internal/platform/httpx"
	"github.com/IshuSinghSE/wallpaperz-sub000/internal/shared"
)

// Guard gates management endpoints behind the admin role.
type Guard struct {
	Service *Service
	Logger  *slog.Logger
}

// RequireAdmin yields 401 for anonymous visitors (the dashboard sends
// them to the login page) and 403 for signed-in users without the admin
// role. Role resolution failures degrade to 403, never a panic.
func (g Guard) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || sess.User() == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
			return
		}
		role := g.Service.ResolveRole(r.Context(), sess.User(), sess.Get("email"))
		if role != RoleAdmin {
			if g.Logger != nil {
				g.Logger.Warn("admin access denied", slog.String("user_id", sess.User()), slog.String("role", string(role)))
			}
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "administrator role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
