package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/clerk/clerk-sdk-go/v2"
	clerkhttp "github.com/clerk/clerk-sdk-go/v2/http"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/go-marketplace/internal/errs"
	"github.com/deppfellow/go-marketplace/internal/server"
)

type AuthMiddleware struct {
	server *server.Server
}

func NewAuthMiddleware(s *server.Server) *AuthMiddleware {
	return &AuthMiddleware{
		server: s,
	}
}

// RequireAuth verifies the Clerk session token in the Authorization header
// and stores the subject and active organization role in the Echo context.
// The identity is trusted as-is from here on.
func (auth *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return echo.WrapMiddleware(
		clerkhttp.WithHeaderAuthorization(
			clerkhttp.AuthorizationFailureHandler(http.HandlerFunc(auth.writeUnauthorized))))(
		func(c echo.Context) error {
			claims, ok := clerk.SessionClaimsFromContext(c.Request().Context())
			if !ok {
				GetLogger(c).Error().
					Str("function", "RequireAuth").
					Msg("could not get session claims from context")

				return errs.NewUnauthorizedError("Unauthorized", false)
			}

			return auth.authenticated(c, next, claims.Subject, claims.ActiveOrganizationRole)
		})
}

func (auth *AuthMiddleware) authenticated(c echo.Context, next echo.HandlerFunc, userID, role string) error {
	c.Set(UserIDKey, userID)
	c.Set(UserRoleKey, role)
	withIdentity(c, userID, role)

	GetLogger(c).Debug().
		Str("function", "RequireAuth").
		Msg("user authenticated successfully")

	return next(c)
}

// writeUnauthorized runs outside Echo, so it writes the HTTPError body itself.
func (auth *AuthMiddleware) writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	if err := json.NewEncoder(w).Encode(errs.NewUnauthorizedError("Unauthorized", false)); err != nil {
		auth.server.Logger.Error().
			Err(err).
			Str("function", "RequireAuth").
			Dur("duration", time.Since(start)).
			Msg("failed to write JSON response")
		return
	}

	auth.server.Logger.Warn().
		Str("function", "RequireAuth").
		Str("path", r.URL.Path).
		Dur("duration", time.Since(start)).
		Msg("rejected request without a valid session")
}

// RequireRole admits only users whose active organization role is role.
// It must run after RequireAuth.
func (auth *AuthMiddleware) RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if GetUserRole(c) != role {
				GetLogger(c).Warn().
					Str("function", "RequireRole").
					Str("required_role", role).
					Msg("insufficient role")

				return errs.NewForbiddenError("You do not have permission to perform this action", true)
			}
			return next(c)
		}
	}
}
