package lifecycle

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erazemk/findmate/internal/access"
	"github.com/erazemk/findmate/internal/metrics"
	"github.com/erazemk/findmate/internal/model"
	"github.com/erazemk/findmate/internal/photo"
	"github.com/erazemk/findmate/internal/store"
)

// SubmitReport validates and stores a new report owned by actor. Nothing is
// written when validation fails.
func (e *Engine) SubmitReport(ctx context.Context, actor *access.Actor, kind model.Kind, in ReportInput, upload *PhotoUpload) (model.Report, error) {
	if err := e.authorize(ctx, actor, access.OpSubmitReport); err != nil {
		return nil, err
	}

	r, err := buildReport(kind, in)
	if err != nil {
		return nil, err
	}

	var img *photo.Image
	if upload != nil && len(upload.Data) > 0 {
		if e.photos == nil {
			return nil, invalid("photo", "Photo uploads are not available.")
		}
		img, err = photo.Process(bytes.NewReader(upload.Data))
		if err != nil {
			return nil, invalid("photo", "Photo must be a JPEG or PNG image under 10 MB.")
		}
	}

	now := e.now()
	b := r.Base()
	owner := actor.UserID
	b.ID = uuid.NewString()
	b.OwnerID = &owner
	b.CreatedAt = now
	b.UpdatedAt = now

	if img != nil {
		url, err := e.photos.Put(ctx, b.ID+".jpg", img.MIME, img.Data)
		if err != nil {
			return nil, transient("storing photo", err)
		}
		b.PhotoURL = url
	}

	if err := e.repo.CreateReport(ctx, r); err != nil {
		return nil, transient("creating report", err)
	}

	e.metrics.Report(string(kind), metrics.EventSubmitted)
	e.log.Info("report submitted",
		zap.String("kind", string(kind)),
		zap.String("id", b.ID),
		zap.Int64("user_id", actor.UserID),
	)
	return r, nil
}

// ListReports returns active reports of kind matching f, newest first.
func (e *Engine) ListReports(ctx context.Context, kind model.Kind, f ListFilter) ([]model.Report, error) {
	if kind != model.KindLost && kind != model.KindFound {
		return nil, invalid("kind", "Unknown report type.")
	}
	filter, err := e.reportFilter(f)
	if err != nil {
		return nil, err
	}
	reports, err := e.repo.ListReports(ctx, kind, filter)
	if err != nil {
		return nil, transient("listing reports", err)
	}
	return reports, nil
}

// Resolve archives the report into a reunited record and removes it. The
// archive write happens before the delete inside one transaction, so a
// failure leaves the report untouched. A report that no longer exists,
// including one resolved concurrently, yields ErrNotFound.
func (e *Engine) Resolve(ctx context.Context, actor *access.Actor, kind model.Kind, id string) (*model.ReunitedRecord, error) {
	if err := e.authorize(ctx, actor, access.OpResolve); err != nil {
		return nil, err
	}
	if kind != model.KindLost && kind != model.KindFound {
		return nil, ErrNotFound
	}

	resolvedBy := actor.UserID
	rec, err := e.repo.ArchiveReport(ctx, kind, id, func(r model.Report) model.ReunitedRecord {
		rec := model.NewReunitedRecord(r, e.now())
		rec.ID = uuid.NewString()
		rec.ResolvedBy = &resolvedBy
		return rec
	})
	if errors.Is(err, store.ErrSourceChanged) {
		e.log.Info("report changed while resolving", zap.String("kind", string(kind)), zap.String("id", id))
		return nil, fmt.Errorf("%s report %s: %w", kind, id, ErrNotFound)
	}
	if err != nil {
		e.log.Error("resolve failed", zap.String("kind", string(kind)), zap.String("id", id), zap.Error(err))
		return nil, transient("resolving report", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%s report %s: %w", kind, id, ErrNotFound)
	}

	e.metrics.Report(string(kind), metrics.EventResolved)
	e.log.Info("report resolved",
		zap.String("kind", string(kind)),
		zap.String("id", id),
		zap.String("record_id", rec.ID),
		zap.Int64("admin_id", actor.UserID),
	)
	return rec, nil
}

// Discard deletes a report without archiving it.
func (e *Engine) Discard(ctx context.Context, actor *access.Actor, kind model.Kind, id string) error {
	if err := e.authorize(ctx, actor, access.OpDiscard); err != nil {
		return err
	}
	if kind != model.KindLost && kind != model.KindFound {
		return ErrNotFound
	}

	deleted, err := e.repo.DeleteReport(ctx, kind, id)
	if err != nil {
		return transient("discarding report", err)
	}
	if !deleted {
		return fmt.Errorf("%s report %s: %w", kind, id, ErrNotFound)
	}

	e.metrics.Report(string(kind), metrics.EventDiscarded)
	e.log.Info("report discarded",
		zap.String("kind", string(kind)),
		zap.String("id", id),
		zap.Int64("admin_id", actor.UserID),
	)
	return nil
}

// ListReunited returns the reunified archive, most recent first.
func (e *Engine) ListReunited(ctx context.Context, actor *access.Actor) ([]model.ReunitedRecord, error) {
	if err := e.authorize(ctx, actor, access.OpListReunited); err != nil {
		return nil, err
	}
	records, err := e.repo.ListReunited(ctx)
	if err != nil {
		return nil, transient("listing reunited records", err)
	}
	return records, nil
}

// Dashboard is the data shown on the admin dashboard.
type Dashboard struct {
	Users         []model.User           `json:"users"`
	LostItems     []model.Report         `json:"lostItems"`
	FoundItems    []model.Report         `json:"foundItems"`
	ReunitedItems []model.ReunitedRecord `json:"reunitedItems"`
}

// Dashboard collects every user, active report and reunited record.
func (e *Engine) Dashboard(ctx context.Context, actor *access.Actor) (*Dashboard, error) {
	if err := e.authorize(ctx, actor, access.OpAdminDashboard); err != nil {
		return nil, err
	}

	var d Dashboard
	var err error
	if d.Users, err = e.repo.ListUsers(ctx); err != nil {
		return nil, transient("loading dashboard", err)
	}
	if d.LostItems, err = e.repo.ListReports(ctx, model.KindLost, model.ReportFilter{}); err != nil {
		return nil, transient("loading dashboard", err)
	}
	if d.FoundItems, err = e.repo.ListReports(ctx, model.KindFound, model.ReportFilter{}); err != nil {
		return nil, transient("loading dashboard", err)
	}
	if d.ReunitedItems, err = e.repo.ListReunited(ctx); err != nil {
		return nil, transient("loading dashboard", err)
	}
	return &d, nil
}

// Stats are the counters shown on the home page.
type Stats struct {
	ItemsReported int `json:"itemsReported"`
	HappyUsers    int `json:"happyUsers"`
	ItemsReunited int `json:"itemsReunited"`
}

// Stats counts active reports, users and reunited records.
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	lost, err := e.repo.CountReports(ctx, model.KindLost)
	if err != nil {
		return s, transient("counting reports", err)
	}
	found, err := e.repo.CountReports(ctx, model.KindFound)
	if err != nil {
		return s, transient("counting reports", err)
	}
	s.ItemsReported = lost + found
	if s.HappyUsers, err = e.repo.CountUsers(ctx); err != nil {
		return s, transient("counting users", err)
	}
	if s.ItemsReunited, err = e.repo.CountReunited(ctx); err != nil {
		return s, transient("counting reunited records", err)
	}
	return s, nil
}

// DeleteUser soft-deletes an account. Reports and reunited records keep
// their reference to it. Administrators cannot delete themselves.
func (e *Engine) DeleteUser(ctx context.Context, actor *access.Actor, id int64) error {
	if err := e.authorize(ctx, actor, access.OpDeleteUser); err != nil {
		return err
	}
	if id == actor.UserID {
		return invalid("id", "You cannot delete your own account.")
	}

	deleted, err := e.repo.DeleteUser(ctx, id, e.now())
	if err != nil {
		return transient("deleting user", err)
	}
	if !deleted {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}

	e.log.Info("user deleted", zap.Int64("user_id", id), zap.Int64("admin_id", actor.UserID))
	return nil
}
