package api

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/erazemk/findmate/internal/access"
	"github.com/erazemk/findmate/internal/auth"
)

type contextKey string

const claimsKey contextKey = "claims"

// AuthMiddleware validates an optional bearer token, checks revocation and
// adds the claims and actor to the context. Requests without a token pass
// through anonymously; the engine decides whether that is enough.
func AuthMiddleware(sessions *auth.Sessions, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !strings.HasPrefix(header, "Bearer ") {
				jsonError(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}

			claims, err := sessions.Verify(r.Context(), strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				log.Debug("rejected bearer token", zap.Error(err))
				jsonError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			ctx = access.WithActor(ctx, claims.Actor())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects requests that carry no valid session.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetClaims(r.Context()) == nil {
			jsonError(w, http.StatusUnauthorized, access.NoticeSignIn)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetClaims retrieves the JWT claims from the context.
func GetClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}
