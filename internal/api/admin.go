package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/erazemk/findmate/internal/access"
	"github.com/erazemk/findmate/internal/model"
)

// Dashboard handles GET /api/admin/dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Engine.Dashboard(r.Context(), access.ActorFrom(r.Context()))
	if err != nil {
		h.engineError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, d)
}

// ListReunited handles GET /api/admin/reunited.
func (h *Handler) ListReunited(w http.ResponseWriter, r *http.Request) {
	records, err := h.Engine.ListReunited(r.Context(), access.ActorFrom(r.Context()))
	if err != nil {
		h.engineError(w, r, err)
		return
	}
	if records == nil {
		records = []model.ReunitedRecord{}
	}
	jsonResponse(w, http.StatusOK, records)
}

// Resolve handles POST /api/admin/reports/{kind}/{id}/resolve.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	kind, ok := pathKind(w, r)
	if !ok {
		return
	}
	rec, err := h.Engine.Resolve(r.Context(), access.ActorFrom(r.Context()), kind, chi.URLParam(r, "id"))
	if err != nil {
		h.engineError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, rec)
}

// Discard handles DELETE /api/admin/reports/{kind}/{id}.
func (h *Handler) Discard(w http.ResponseWriter, r *http.Request) {
	kind, ok := pathKind(w, r)
	if !ok {
		return
	}
	if err := h.Engine.Discard(r.Context(), access.ActorFrom(r.Context()), kind, chi.URLParam(r, "id")); err != nil {
		h.engineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteUser handles DELETE /api/admin/users/{id}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if err := h.Engine.DeleteUser(r.Context(), access.ActorFrom(r.Context()), id); err != nil {
		h.engineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
