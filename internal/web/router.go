// Package web serves the server-rendered FindMate pages.
package web

import (
	"context"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/erazemk/findmate/internal/access"
	"github.com/erazemk/findmate/internal/auth"
	"github.com/erazemk/findmate/internal/lifecycle"
	"github.com/erazemk/findmate/internal/metrics"
	"github.com/erazemk/findmate/internal/model"
	"github.com/erazemk/findmate/internal/telemetry"
)

// PhotoSource serves photos kept in the database.
type PhotoSource interface {
	GetPhoto(ctx context.Context, id string) (*model.Photo, error)
}

// Options configures the web router.
type Options struct {
	Engine    *lifecycle.Engine
	Sessions  *auth.Sessions
	Photos    PhotoSource
	Templates fs.FS
	Static    fs.FS
	Logger    *zap.Logger
	Metrics   *metrics.Metrics

	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer

	CookieSecure bool

	// LoginRateLimit is the number of login, signup and password reset
	// submissions allowed per IP per minute. Zero disables throttling.
	LoginRateLimit int
}

// Server holds all dependencies for page handlers.
type Server struct {
	Engine       *lifecycle.Engine
	Sessions     *auth.Sessions
	Photos       PhotoSource
	Templates    *Templates
	Log          *zap.Logger
	CookieSecure bool
}

// NewRouter creates the web page router with all page routes registered.
func NewRouter(opts Options) (http.Handler, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	templates, err := LoadTemplates(opts.Templates, log)
	if err != nil {
		return nil, err
	}

	s := &Server{
		Engine:       opts.Engine,
		Sessions:     opts.Sessions,
		Photos:       opts.Photos,
		Templates:    templates,
		Log:          log,
		CookieSecure: opts.CookieSecure,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(telemetry.RequestLogger(log, opts.Metrics, "web"))
	r.Use(middleware.Recoverer)
	r.Use(s.SessionMiddleware)

	if opts.Static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(opts.Static))))
	}
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	// Public pages.
	r.Get("/", s.Home)
	for _, p := range infoPages {
		r.Get("/"+p.name, s.infoPage(p))
	}
	r.Get("/view-lost", s.ViewReports(model.KindLost))
	r.Get("/view-found", s.ViewReports(model.KindFound))
	r.Get("/photos/{id}", s.Photo)

	// Accounts.
	r.Get("/auth", s.AuthPage)
	r.Get("/signup", redirectTo("/auth"))
	r.Get("/login", s.LoginPage)
	r.Get("/verify-email", s.VerifyEmail)
	r.Get("/resend-verification", s.ResendVerificationPage)
	r.Get("/forgot-password", s.ForgotPasswordPage)
	r.Get("/reset-password/{token}", s.ResetPasswordPage)
	r.Get("/admin-login", s.AdminLoginPage)
	r.Group(func(r chi.Router) {
		if opts.LoginRateLimit > 0 {
			r.Use(httprate.LimitByIP(opts.LoginRateLimit, time.Minute))
		}
		r.Post("/signup", s.SignupSubmit)
		r.Post("/login", s.LoginSubmit)
		r.Post("/admin-login", s.AdminLoginSubmit)
		r.Post("/resend-verification", s.ResendVerificationSubmit)
		r.Post("/forgot-password", s.ForgotPasswordSubmit)
		r.Post("/reset-password/{token}", s.ResetPasswordSubmit)
	})

	// Members.
	r.Group(func(r chi.Router) {
		r.Use(s.Gate(access.OpLogout))
		r.Get("/logout", s.Logout)
		r.Post("/logout", s.Logout)
	})
	r.Group(func(r chi.Router) {
		r.Use(s.Gate(access.OpChangePassword))
		r.Get("/account/password", s.ChangePasswordPage)
		r.Post("/account/password", s.ChangePasswordSubmit)
	})
	r.Group(func(r chi.Router) {
		r.Use(s.Gate(access.OpSubmitReport))
		r.Get("/report-lost", s.ReportPage(model.KindLost))
		r.Post("/report-lost", s.ReportSubmit(model.KindLost))
		r.Get("/report-found", s.ReportPage(model.KindFound))
		r.Post("/report-found", s.ReportSubmit(model.KindFound))
	})

	// Administration. The engine checks the role again on every operation.
	r.Route("/admin", func(r chi.Router) {
		r.With(s.Gate(access.OpAdminDashboard)).Get("/dashboard", s.AdminDashboard)
		r.With(s.Gate(access.OpListReunited)).Get("/reunited", s.ReunitedPage)
		r.With(s.Gate(access.OpDiscard)).Post("/{collection}/{id}", s.DiscardSubmit)
		r.With(s.Gate(access.OpDiscard)).Post("/{collection}/{id}/delete", s.DiscardSubmit)
		r.With(s.Gate(access.OpResolve)).Post("/{collection}/{id}/resolve", s.ResolveSubmit)
		r.With(s.Gate(access.OpDeleteUser)).Post("/users/{id}/delete", s.DeleteUserSubmit)
	})

	r.NotFound(s.NotFound)

	return r, nil
}

func redirectTo(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, path, http.StatusSeeOther)
	}
}
