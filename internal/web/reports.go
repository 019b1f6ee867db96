package web

import (
	"errors"
	"io"
	"net/http"

	"github.com/erazemk/findmate/internal/access"
	"github.com/erazemk/findmate/internal/lifecycle"
	"github.com/erazemk/findmate/internal/model"
	"github.com/erazemk/findmate/internal/photo"
)

const photoField = "item-photo"

var (
	listPaths   = map[model.Kind]string{model.KindLost: "/view-lost", model.KindFound: "/view-found"}
	reportPaths = map[model.Kind]string{model.KindLost: "/report-lost", model.KindFound: "/report-found"}
	submitted   = map[model.Kind]string{
		model.KindLost:  "Successfully submitted your lost item report!",
		model.KindFound: "Thank you for reporting the found item!",
	}
)

// ViewReports handles GET /view-lost and GET /view-found.
func (s *Server) ViewReports(kind model.Kind) http.HandlerFunc {
	title := "Lost Items"
	if kind == model.KindFound {
		title = "Found Items"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		data := s.page(w, r, title)
		data.Kind = kind
		data.Search = q.Get("search")
		data.Category = q.Get("category")
		data.Date = q.Get("date")

		items, err := s.Engine.ListReports(r.Context(), kind, lifecycle.ListFilter{
			Text:     data.Search,
			Category: data.Category,
			Recency:  data.Date,
		})
		var verr *lifecycle.ValidationError
		switch {
		case errors.As(err, &verr):
			data.Flash = &Flash{Kind: FlashError, Message: verr.Reason}
		case err != nil:
			s.fail(w, r, err, "/")
			return
		}
		data.Items = items
		s.Templates.Render(w, "view-reports.html", data)
	}
}

// ReportPage handles GET /report-lost and GET /report-found.
func (s *Server) ReportPage(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.page(w, r, "Report "+label(kind)+" Item")
		data.Kind = kind
		s.Templates.Render(w, "report-"+string(kind)+".html", data)
	}
}

// ReportSubmit handles POST /report-lost and POST /report-found.
func (s *Server) ReportSubmit(kind model.Kind) http.HandlerFunc {
	back := reportPaths[kind]
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, photo.MaxUploadBytes+1<<20)
		if err := r.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			s.redirect(w, r, FlashError, "Photo must be a JPEG or PNG image under 10 MB.", back)
			return
		}

		upload, err := formPhoto(r)
		if err != nil {
			s.redirect(w, r, FlashError, "Photo must be a JPEG or PNG image under 10 MB.", back)
			return
		}

		in := lifecycle.ReportInput{
			ItemName:        r.FormValue("item_name"),
			Category:        r.FormValue("category"),
			Description:     r.FormValue("description"),
			Location:        r.FormValue("location"),
			Date:            r.FormValue("date"),
			Color:           r.FormValue("color"),
			Brand:           r.FormValue("brand"),
			CurrentLocation: r.FormValue("current_location"),
			ContactPhone:    r.FormValue("contact_phone"),
			Notes:           r.FormValue("notes"),
		}

		if _, err := s.Engine.SubmitReport(r.Context(), access.ActorFrom(r.Context()), kind, in, upload); err != nil {
			s.fail(w, r, err, back)
			return
		}
		s.redirect(w, r, FlashSuccess, submitted[kind], listPaths[kind])
	}
}

func formPhoto(r *http.Request) (*lifecycle.PhotoUpload, error) {
	f, hdr, err := r.FormFile(photoField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, photo.MaxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &lifecycle.PhotoUpload{Filename: hdr.Filename, Data: data}, nil
}

func label(kind model.Kind) string {
	if kind == model.KindFound {
		return "Found"
	}
	return "Lost"
}
