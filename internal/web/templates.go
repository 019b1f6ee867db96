package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/erazemk/findmate/internal/access"
	"github.com/erazemk/findmate/internal/lifecycle"
	"github.com/erazemk/findmate/internal/model"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
	log       *zap.Logger
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"categories": func() []model.Category { return model.Categories },
		"zones":      func() []model.Zone { return model.Zones },
		"label": func(s any) string {
			v := strings.ReplaceAll(fmt.Sprint(s), "-", " ")
			if v == "" {
				return v
			}
			return strings.ToUpper(v[:1]) + v[1:]
		},
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
		"datePtr": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
		"today": func() string { return time.Now().Format(model.DateLayout) },
		"dict": func(kv ...any) (map[string]any, error) {
			if len(kv)%2 != 0 {
				return nil, fmt.Errorf("dict: odd number of arguments")
			}
			m := make(map[string]any, len(kv)/2)
			for i := 0; i < len(kv); i += 2 {
				k, ok := kv[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
				}
				m[k] = kv[i+1]
			}
			return m, nil
		},
	}
}

var pages = []string{
	"index.html",
	"help-center.html",
	"contact.html",
	"privacy-policy.html",
	"terms-of-service.html",
	"community.html",
	"auth.html",
	"login.html",
	"verify-prompt.html",
	"resend-verification.html",
	"forgot-password.html",
	"reset-password.html",
	"change-password.html",
	"view-reports.html",
	"report-lost.html",
	"report-found.html",
	"admin-login.html",
	"admin-dashboard.html",
	"reunited.html",
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates(tfs fs.FS, log *zap.Logger) (*Templates, error) {
	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	ts := &Templates{templates: make(map[string]*template.Template), log: log}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data. The page is rendered into
// a buffer first so a template error still produces a clean 500.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		ts.log.Error("failed to render template", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// PageData is the data passed to all templates.
type PageData struct {
	Title string
	Actor *access.Actor
	Flash *Flash

	// Listing pages.
	Kind     model.Kind
	Items    []model.Report
	Search   string
	Category string
	Date     string

	Stats     lifecycle.Stats
	Dashboard *lifecycle.Dashboard
	Reunited  []model.ReunitedRecord
	Token     string
}

func (s *Server) page(w http.ResponseWriter, r *http.Request, title string) *PageData {
	return &PageData{
		Title: title,
		Actor: access.ActorFrom(r.Context()),
		Flash: s.popFlash(w, r),
	}
}
