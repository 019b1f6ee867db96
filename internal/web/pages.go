package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/erazemk/findmate/internal/lifecycle"
)

const noticeSomethingWrong = "Something went wrong. Please try again."

type infoPage struct {
	name, title string
}

var infoPages = []infoPage{
	{"help-center", "Help Center"},
	{"contact", "Contact Us"},
	{"privacy-policy", "Privacy Policy"},
	{"terms-of-service", "Terms of Service"},
	{"community", "Community Guidelines"},
}

// Home handles GET /.
func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	data := s.page(w, r, "FindMate")
	stats, err := s.Engine.Stats(r.Context())
	if err != nil {
		s.Log.Error("loading stats", zap.Error(err))
	}
	data.Stats = stats
	s.Templates.Render(w, "index.html", data)
}

func (s *Server) infoPage(p infoPage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Templates.Render(w, p.name+".html", s.page(w, r, p.title))
	}
}

// NotFound redirects unknown pages home.
func (s *Server) NotFound(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	s.redirect(w, r, FlashError, "Page not found.", "/")
}

// Photo handles GET /photos/{id}.
func (s *Server) Photo(w http.ResponseWriter, r *http.Request) {
	if s.Photos == nil {
		http.NotFound(w, r)
		return
	}
	p, err := s.Photos.GetPhoto(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.Log.Error("failed to get photo", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if p == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", p.MIME)
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	if _, err := w.Write(p.Data); err != nil {
		s.Log.Warn("failed to write photo response", zap.Error(err))
	}
}

// fail turns an engine error into a flash and redirect to back.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, back string) {
	var verr *lifecycle.ValidationError
	var denied *lifecycle.DeniedError

	switch {
	case errors.As(err, &denied):
		s.deny(w, r, denied.Decision)
	case errors.As(err, &verr):
		s.redirect(w, r, FlashError, verr.Reason, back)
	case errors.Is(err, lifecycle.ErrNotFound):
		s.redirect(w, r, FlashError, "That item no longer exists.", back)
	default:
		s.Log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		s.redirect(w, r, FlashError, noticeSomethingWrong, back)
	}
}
