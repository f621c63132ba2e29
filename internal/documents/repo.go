package documents

import (
	"context"
	"time"
)

// Repo persists documents. Every lookup is scoped to the owning user.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, userID, id string) (Document, error)
	// ListByUser returns the user's documents, newest first.
	ListByUser(ctx context.Context, userID string) ([]Document, error)
	// TransitionStatus moves the document from one status to another in a
	// single conditional write. If the current status is not from it returns
	// the current document with ErrStatusConflict. Moving to completed also
	// sets AnalyzedAt.
	TransitionStatus(ctx context.Context, userID, id, from, to string, at time.Time) (Document, error)
	Delete(ctx context.Context, userID, id string) error
}
