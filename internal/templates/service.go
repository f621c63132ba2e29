package templates

import (
	"context"
	"errors"
	"time"

	"github.com/MattyO101/Legalassist-MPV/internal/shared/apierr"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/metrics"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/telemetry"
	"github.com/MattyO101/Legalassist-MPV/internal/templates/export"
)

// Service contains business logic for templates.
type Service struct {
	Templates     Repo
	UserTemplates UserRepo
	Exporter      *export.Exporter
	Now           func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) List(ctx context.Context, category string) ([]Template, error) {
	return s.Templates.ListActive(ctx, category)
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.Templates.Categories(ctx)
}

// Get returns an active template.
func (s *Service) Get(ctx context.Context, id string) (Template, error) {
	t, err := s.Templates.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Template{}, apierr.NotFound("Template not found")
		}
		return Template{}, err
	}
	if !t.IsActive {
		return Template{}, apierr.NotFound("Template not found")
	}
	return t, nil
}

// Customize echoes data alongside the template. Data is not checked against
// the template's fields.
func (s *Service) Customize(ctx context.Context, id string, data map[string]any) (CustomizeResponse, error) {
	if len(data) == 0 {
		return CustomizeResponse{}, apierr.BadRequest("Template data is required")
	}
	t, err := s.Get(ctx, id)
	if err != nil {
		return CustomizeResponse{}, err
	}
	return CustomizeResponse{Template: t, CustomizedData: data}, nil
}

func (s *Service) Export(ctx context.Context, userID, id string, req ExportRequest) (export.Result, error) {
	if len(req.Data) == 0 {
		return export.Result{}, apierr.BadRequest("Template data is required")
	}
	t, err := s.Get(ctx, id)
	if err != nil {
		return export.Result{}, err
	}
	res, err := s.Exporter.Export(ctx, export.Document{Title: t.Title, Content: t.Content, Data: req.Data}, req.Format)
	if err != nil {
		if errors.Is(err, export.ErrInvalidFormat) {
			return export.Result{}, apierr.BadRequest("Invalid export format")
		}
		return export.Result{}, apierr.Internal("Failed to export template", err)
	}
	metrics.IncTemplateExport(res.Format)
	telemetry.Info("template.exported", map[string]any{
		"user_id":     userID,
		"template_id": t.ID,
		"format":      res.Format,
		"filename":    res.Filename,
		"size_bytes":  res.Size,
		"pages":       res.Pages,
	})
	return res, nil
}

// ListUserTemplates returns the user's saved templates with their template
// populated. Rows whose template has disappeared keep a nil Template.
func (s *Service) ListUserTemplates(ctx context.Context, userID string) ([]UserTemplate, error) {
	rows, err := s.UserTemplates.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	cache := make(map[string]*Template)
	for i := range rows {
		id := rows[i].TemplateID
		tpl, seen := cache[id]
		if !seen {
			t, err := s.Templates.GetByID(ctx, id)
			switch {
			case err == nil:
				tpl = &t
			case errors.Is(err, ErrNotFound):
			default:
				return nil, err
			}
			cache[id] = tpl
		}
		rows[i].Template = tpl
	}
	return rows, nil
}

func (s *Service) SaveUserTemplate(ctx context.Context, userID string, req SaveUserTemplateRequest) (UserTemplate, error) {
	if err := req.Validate(); err != nil {
		return UserTemplate{}, apierr.BadRequest("Template ID, title and data are required")
	}
	if _, err := s.Get(ctx, req.TemplateID); err != nil {
		return UserTemplate{}, err
	}
	now := s.now()
	return s.UserTemplates.Upsert(ctx, UserTemplate{
		UserID:     userID,
		TemplateID: req.TemplateID,
		Title:      req.Title,
		Data:       req.Data,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

func (s *Service) DeleteUserTemplate(ctx context.Context, userID, id string) error {
	if err := s.UserTemplates.Deactivate(ctx, userID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apierr.NotFound("Template not found")
		}
		return err
	}
	return nil
}

// Seed inserts the built-in catalogue when no templates exist. It returns the
// number inserted.
func (s *Service) Seed(ctx context.Context) (int, error) {
	n, err := s.Templates.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	tpls, err := Catalog(s.now())
	if err != nil {
		return 0, err
	}
	if err := s.Templates.InsertMany(ctx, tpls); err != nil {
		return 0, err
	}
	telemetry.Info("templates.seeded", map[string]any{"count": len(tpls)})
	return len(tpls), nil
}
