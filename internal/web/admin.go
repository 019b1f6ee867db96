package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/erazemk/findmate/internal/access"
	"github.com/erazemk/findmate/internal/model"
)

// collections maps the admin URL segment to a report kind.
var collections = map[string]model.Kind{
	"lostitems":  model.KindLost,
	"founditems": model.KindFound,
}

func dashboardAnchor(kind model.Kind) string {
	return "/admin/dashboard#" + string(kind) + "-items"
}

// AdminDashboard handles GET /admin/dashboard.
func (s *Server) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.Engine.Dashboard(r.Context(), access.ActorFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err, "/")
		return
	}
	data := s.page(w, r, "Admin Dashboard")
	data.Dashboard = d
	s.Templates.Render(w, "admin-dashboard.html", data)
}

// ReunitedPage handles GET /admin/reunited.
func (s *Server) ReunitedPage(w http.ResponseWriter, r *http.Request) {
	records, err := s.Engine.ListReunited(r.Context(), access.ActorFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err, "/admin/dashboard")
		return
	}
	data := s.page(w, r, "Reunited Items")
	data.Reunited = records
	s.Templates.Render(w, "reunited.html", data)
}

// DiscardSubmit handles POST /admin/{collection}/{id}[/delete].
func (s *Server) DiscardSubmit(w http.ResponseWriter, r *http.Request) {
	kind, ok := collections[chi.URLParam(r, "collection")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	back := dashboardAnchor(kind)
	if err := s.Engine.Discard(r.Context(), access.ActorFrom(r.Context()), kind, chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err, back)
		return
	}
	s.redirect(w, r, FlashSuccess, "Successfully deleted the "+string(kind)+" item report.", back)
}

// ResolveSubmit handles POST /admin/{collection}/{id}/resolve.
func (s *Server) ResolveSubmit(w http.ResponseWriter, r *http.Request) {
	kind, ok := collections[chi.URLParam(r, "collection")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	rec, err := s.Engine.Resolve(r.Context(), access.ActorFrom(r.Context()), kind, chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err, dashboardAnchor(kind))
		return
	}
	s.redirect(w, r, FlashSuccess, rec.ItemName+" has been marked as reunited!", "/admin/dashboard#reunited-items")
}

// DeleteUserSubmit handles POST /admin/users/{id}/delete.
func (s *Server) DeleteUserSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := s.Engine.DeleteUser(r.Context(), access.ActorFrom(r.Context()), id); err != nil {
		s.fail(w, r, err, "/admin/dashboard#users")
		return
	}
	s.redirect(w, r, FlashSuccess, "User deleted.", "/admin/dashboard#users")
}
