// Package api serves the JSON API under /api.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"github.com/erazemk/findmate/internal/auth"
	"github.com/erazemk/findmate/internal/lifecycle"
	"github.com/erazemk/findmate/internal/metrics"
	"github.com/erazemk/findmate/internal/telemetry"
)

// Handler holds the dependencies of the API endpoints.
type Handler struct {
	Engine   *lifecycle.Engine
	Sessions *auth.Sessions
	Log      *zap.Logger
	Metrics  *metrics.Metrics

	// LoginRateLimit is the number of login attempts allowed per IP per
	// minute. Zero disables throttling.
	LoginRateLimit int
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(h *Handler) http.Handler {
	if h.Log == nil {
		h.Log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(telemetry.RequestLogger(h.Log, h.Metrics, "api"))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(AuthMiddleware(h.Sessions, h.Log))

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if h.LoginRateLimit > 0 {
				r.Use(httprate.LimitByIP(h.LoginRateLimit, time.Minute))
			}
			r.Post("/auth/login", h.Login)
			r.Post("/auth/signup", h.Signup)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireSession)
			r.Post("/auth/logout", h.Logout)
			r.Put("/auth/password", h.ChangePassword)
		})

		r.Get("/stats", h.Stats)
		r.Get("/reports/{kind}", h.ListReports)
		r.Post("/reports/{kind}", h.SubmitReport)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/dashboard", h.Dashboard)
			r.Get("/reunited", h.ListReunited)
			r.Post("/reports/{kind}/{id}/resolve", h.Resolve)
			r.Delete("/reports/{kind}/{id}", h.Discard)
			r.Delete("/users/{id}", h.DeleteUser)
		})
	})

	return r
}
