package templates

import "context"

// Repo persists the template catalogue.
type Repo interface {
	// ListActive returns active templates, optionally limited to one category.
	ListActive(ctx context.Context, category string) ([]Template, error)
	// Categories returns the distinct categories of active templates, sorted.
	Categories(ctx context.Context) ([]string, error)
	// GetByID returns a template whether or not it is active.
	GetByID(ctx context.Context, id string) (Template, error)
	Count(ctx context.Context) (int64, error)
	InsertMany(ctx context.Context, tpls []Template) error
}

// UserRepo persists user templates.
type UserRepo interface {
	// ListActiveByUser returns the user's active rows, most recently updated first.
	ListActiveByUser(ctx context.Context, userID string) ([]UserTemplate, error)
	// Upsert updates Title, Data and UpdatedAt of the active row for
	// (UserID, TemplateID), inserting ut when none exists.
	Upsert(ctx context.Context, ut UserTemplate) (UserTemplate, error)
	// Deactivate soft deletes the user's row.
	Deactivate(ctx context.Context, userID, id string) error
}
