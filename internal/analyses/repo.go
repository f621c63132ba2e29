package analyses

import (
	"context"
	"time"
)

// Repo persists recommendations.
type Repo interface {
	CreateMany(ctx context.Context, recs []Recommendation) error
	// ListByDocument returns recommendations ordered by severity, then newest first.
	ListByDocument(ctx context.Context, documentID string) ([]Recommendation, error)
	GetByID(ctx context.Context, id string) (Recommendation, error)
	UpdateStatus(ctx context.Context, id, status string, at time.Time) (Recommendation, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}
