package web

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/erazemk/findmate/internal/access"
	"github.com/erazemk/findmate/internal/auth"
)

type webContextKey string

const webClaimsKey webContextKey = "webclaims"

const (
	sessionCookie  = "token"
	returnToCookie = "return_to"
)

// SessionMiddleware validates the session cookie, checks token revocation,
// and adds the claims and actor to the context. A missing or bad cookie
// leaves the request anonymous.
func (s *Server) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := s.Sessions.Verify(r.Context(), cookie.Value)
		if err != nil {
			s.Log.Debug("dropping session cookie", zap.Error(err))
			s.clearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), webClaimsKey, claims)
		ctx = access.WithActor(ctx, claims.Actor())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Gate enforces the access decision for op before the handler runs.
func (s *Server) Gate(op access.Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := access.Decide(access.ActorFrom(r.Context()), op)
			if !d.Allowed() {
				s.deny(w, r, d)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// deny turns a refused decision into a flash and redirect. Anonymous
// visitors are sent to sign in and brought back afterwards.
func (s *Server) deny(w http.ResponseWriter, r *http.Request, d access.Decision) {
	switch d.Outcome {
	case access.DenyLogin:
		if r.Method == http.MethodGet {
			http.SetCookie(w, &http.Cookie{
				Name:     returnToCookie,
				Value:    url.QueryEscape(r.URL.RequestURI()),
				Path:     "/",
				MaxAge:   int((15 * time.Minute).Seconds()),
				HttpOnly: true,
				Secure:   s.CookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		s.redirect(w, r, FlashError, d.Notice, "/auth")
	default:
		s.redirect(w, r, FlashError, d.Notice, "/")
	}
}

// popReturnTo returns the page to continue to after login and clears it.
// Only same-site paths are honoured.
func (s *Server) popReturnTo(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(returnToCookie)
	if err != nil {
		return "/"
	}
	http.SetCookie(w, &http.Cookie{Name: returnToCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})

	to, err := url.QueryUnescape(c.Value)
	if err != nil || !strings.HasPrefix(to, "/") || strings.HasPrefix(to, "//") || strings.HasPrefix(to, "/\\") {
		return "/"
	}
	return to
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie clears the session cookie with consistent attributes.
func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// GetWebClaims retrieves the session claims from web context.
func GetWebClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(webClaimsKey).(*auth.Claims)
	return claims
}
