package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/erazemk/findmate/internal/access"
	"github.com/erazemk/findmate/internal/lifecycle"
	"github.com/erazemk/findmate/internal/model"
)

type reportRequest struct {
	ItemName        string `json:"item_name"`
	Category        string `json:"category"`
	Description     string `json:"description"`
	Location        string `json:"location"`
	Date            string `json:"date"`
	Color           string `json:"color"`
	Brand           string `json:"brand"`
	CurrentLocation string `json:"current_location"`
	ContactPhone    string `json:"contact_phone"`
	Notes           string `json:"notes"`
}

func pathKind(w http.ResponseWriter, r *http.Request) (model.Kind, bool) {
	kind, ok := model.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		jsonError(w, http.StatusNotFound, "unknown report type")
	}
	return kind, ok
}

// Stats handles GET /api/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Engine.Stats(r.Context())
	if err != nil {
		h.engineError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}

// ListReports handles GET /api/reports/{kind}.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	kind, ok := pathKind(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	reports, err := h.Engine.ListReports(r.Context(), kind, lifecycle.ListFilter{
		Text:     q.Get("search"),
		Category: q.Get("category"),
		Recency:  q.Get("date"),
	})
	if err != nil {
		h.engineError(w, r, err)
		return
	}
	if reports == nil {
		reports = []model.Report{}
	}
	jsonResponse(w, http.StatusOK, reports)
}

// SubmitReport handles POST /api/reports/{kind}.
func (h *Handler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	kind, ok := pathKind(w, r)
	if !ok {
		return
	}
	var req reportRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.Engine.SubmitReport(r.Context(), access.ActorFrom(r.Context()), kind, lifecycle.ReportInput(req), nil)
	if err != nil {
		h.engineError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, report)
}
