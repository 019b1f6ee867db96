package lifecycle

import (
	"strings"
	"time"

	"github.com/erazemk/findmate/internal/model"
)

// ReportInput carries the raw form fields of a report submission. Location
// and Date map to the lost or found variant depending on the kind.
type ReportInput struct {
	ItemName        string
	Category        string
	Description     string
	Location        string
	Date            string
	Color           string
	Brand           string
	CurrentLocation string
	ContactPhone    string
	Notes           string
}

// PhotoUpload is an optional image attached to a submission.
type PhotoUpload struct {
	Filename string
	Data     []byte
}

func (in ReportInput) trimmed() ReportInput {
	return ReportInput{
		ItemName:        strings.TrimSpace(in.ItemName),
		Category:        strings.TrimSpace(in.Category),
		Description:     strings.TrimSpace(in.Description),
		Location:        strings.TrimSpace(in.Location),
		Date:            strings.TrimSpace(in.Date),
		Color:           strings.TrimSpace(in.Color),
		Brand:           strings.TrimSpace(in.Brand),
		CurrentLocation: strings.TrimSpace(in.CurrentLocation),
		ContactPhone:    strings.TrimSpace(in.ContactPhone),
		Notes:           strings.TrimSpace(in.Notes),
	}
}

// buildReport validates in for kind and returns the unsaved report.
func buildReport(kind model.Kind, in ReportInput) (model.Report, error) {
	in = in.trimmed()

	required := []struct {
		field, value, label string
	}{
		{"item_name", in.ItemName, "Item name"},
		{"category", in.Category, "Category"},
		{"description", in.Description, "Description"},
		{"location", in.Location, "Location"},
		{"date", in.Date, "Date"},
	}
	if kind == model.KindFound {
		required = append(required,
			struct{ field, value, label string }{"current_location", in.CurrentLocation, "Current location"},
			struct{ field, value, label string }{"contact_phone", in.ContactPhone, "Contact phone"},
		)
	}
	for _, r := range required {
		if r.value == "" {
			return nil, invalid(r.field, r.label+" is required.")
		}
	}

	category := model.Category(in.Category)
	if !category.Valid() {
		return nil, invalid("category", "Please choose a valid category.")
	}
	zone := model.Zone(in.Location)
	if !zone.Valid() {
		return nil, invalid("location", "Please choose a valid campus location.")
	}
	date, err := time.Parse(model.DateLayout, in.Date)
	if err != nil {
		return nil, invalid("date", "Please enter a valid date (YYYY-MM-DD).")
	}

	base := model.ReportBase{
		ItemName:    in.ItemName,
		Category:    category,
		Description: in.Description,
		Notes:       in.Notes,
	}

	switch kind {
	case model.KindLost:
		return &model.LostReport{
			ReportBase:   base,
			Color:        in.Color,
			Brand:        in.Brand,
			LostLocation: zone,
			LostDate:     date,
		}, nil
	case model.KindFound:
		return &model.FoundReport{
			ReportBase:      base,
			FoundLocation:   zone,
			FoundDate:       date,
			CurrentLocation: in.CurrentLocation,
			ContactPhone:    in.ContactPhone,
		}, nil
	default:
		return nil, invalid("kind", "Unknown report type.")
	}
}

// ListFilter holds the raw browse filters. Empty fields impose no constraint.
type ListFilter struct {
	Text     string
	Category string
	Recency  string
}

func (e *Engine) reportFilter(f ListFilter) (model.ReportFilter, error) {
	out := model.ReportFilter{Text: strings.TrimSpace(f.Text)}

	if c := strings.TrimSpace(f.Category); c != "" {
		out.Category = model.Category(c)
		if !out.Category.Valid() {
			return out, invalid("category", "Unknown category.")
		}
	}

	recency := model.Recency(strings.TrimSpace(f.Recency))
	if !recency.Valid() {
		return out, invalid("date", "Unknown date filter.")
	}
	if since, ok := recency.Since(e.now()); ok {
		out.Since = since
	}
	return out, nil
}
