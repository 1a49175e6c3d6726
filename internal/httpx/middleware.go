package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/shophub/ecommerce-api/internal/apierr"
	"github.com/shophub/ecommerce-api/internal/auth"
	"github.com/shophub/ecommerce-api/internal/users"
)

type ctxKey int

const principalKey ctxKey = 0

type Principal struct {
	UserID string
	Email  string
}

func CurrentPrincipal(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

type AuthMiddleware struct {
	Tokens   *auth.Manager
	Sessions users.SessionStore
	Users    users.Repository
}

// Require validates the bearer token and checks it is still the user's
// active session, so logged-out tokens stop working before they expire.
func (a *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondErr(w, apierr.Unauthorized("missing bearer token"))
			return
		}
		claims, err := a.Tokens.Parse(token)
		if err != nil {
			respondErr(w, err)
			return
		}
		active, err := a.Sessions.ActiveSession(r.Context(), claims.UserID)
		if err != nil {
			respondErr(w, err)
			return
		}
		if active != token {
			respondErr(w, apierr.Unauthorized("session expired"))
			return
		}
		ctx := context.WithValue(r.Context(), principalKey, Principal{
			UserID: claims.UserID,
			Email:  claims.Email,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must run after Require.
func (a *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := CurrentPrincipal(r.Context())
		if !ok {
			respondErr(w, apierr.Unauthorized("missing bearer token"))
			return
		}
		u, err := a.Users.ByID(r.Context(), p.UserID)
		if err != nil {
			respondErr(w, err)
			return
		}
		if !u.IsAdmin() {
			respondErr(w, users.ErrNotAdmin)
			return
		}
		next.ServeHTTP(w, r)
	})
}
