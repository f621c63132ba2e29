package analyses

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MattyO101/Legalassist-MPV/internal/analyses/recommendations"
	"github.com/MattyO101/Legalassist-MPV/internal/documents"
	"github.com/MattyO101/Legalassist-MPV/internal/extract"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/apierr"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/metrics"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/telemetry"
)

// SampleText stands in for documents whose text cannot be read.
const SampleText = "Sample content for demonstration purposes. This is a mock analysis for the MVP."

// Service runs analyses and manages the resulting recommendations.
type Service struct {
	Docs   *documents.Service
	Repo   Repo
	Engine *recommendations.Engine
	Now    func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) engine() *recommendations.Engine {
	if s.Engine != nil {
		return s.Engine
	}
	return recommendations.NewEngine()
}

// Analyze claims the document, generates recommendations from its text and
// marks it completed. It returns the number of recommendations stored.
func (s *Service) Analyze(ctx context.Context, userID, documentID string) (int, error) {
	doc, err := s.Docs.BeginAnalysis(ctx, userID, documentID)
	if err != nil {
		return 0, err
	}
	metrics.IncAnalysisStarted()
	started := time.Now()
	telemetry.Info("analysis.started", map[string]any{
		"user_id":           userID,
		"document_id":       doc.ID,
		"status_transition": documents.StatusUploaded + "->" + documents.StatusProcessing,
	})

	recs, err := s.run(ctx, doc)
	metrics.ObserveAnalysisDurationMs(float64(time.Since(started).Milliseconds()))
	if err != nil {
		return 0, s.fail(ctx, doc, err)
	}
	metrics.IncAnalysisCompleted()
	bySeverity := map[string]int{}
	for _, r := range recs {
		bySeverity[r.Severity]++
	}
	for severity, n := range bySeverity {
		metrics.AddRecommendations(severity, n)
	}
	count := len(recs)
	telemetry.Info("analysis.completed", map[string]any{
		"user_id":           userID,
		"document_id":       doc.ID,
		"recommendations":   count,
		"status_transition": documents.StatusProcessing + "->" + documents.StatusCompleted,
	})
	return count, nil
}

func (s *Service) run(ctx context.Context, doc documents.Document) ([]Recommendation, error) {
	text := s.documentText(ctx, doc)
	drafts := s.engine().Generate(text)

	now := s.now()
	recs := make([]Recommendation, 0, len(drafts))
	for _, d := range drafts {
		recs = append(recs, Recommendation{
			ID:            uuid.NewString(),
			DocumentID:    doc.ID,
			Type:          d.Type,
			Content:       d.Content,
			OriginalText:  d.OriginalText,
			SuggestedText: d.SuggestedText,
			Severity:      d.Severity,
			Status:        StatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}
	if err := s.Repo.CreateMany(ctx, recs); err != nil {
		return nil, err
	}
	if _, err := s.Docs.FinishAnalysis(ctx, doc.UserID, doc.ID, documents.StatusCompleted); err != nil {
		_ = s.Repo.DeleteByDocument(context.WithoutCancel(ctx), doc.ID)
		return nil, err
	}
	return recs, nil
}

// documentText never fails; unreadable files fall back to SampleText.
func (s *Service) documentText(ctx context.Context, doc documents.Document) string {
	text, err := extract.ExtractText(ctx, s.Docs.Store, doc.Filename, doc.FileType)
	if err != nil {
		telemetry.Warn("analysis.extract_failed", map[string]any{
			"document_id": doc.ID,
			"file_type":   doc.FileType,
			"error":       err.Error(),
		})
		return SampleText
	}
	if strings.TrimSpace(text) == "" {
		return SampleText
	}
	return text
}

func (s *Service) fail(ctx context.Context, doc documents.Document, cause error) error {
	metrics.IncAnalysisFailed()
	if _, err := s.Docs.FinishAnalysis(context.WithoutCancel(ctx), doc.UserID, doc.ID, documents.StatusFailed); err != nil {
		telemetry.Error("analysis.mark_failed_error", map[string]any{
			"document_id": doc.ID,
			"error":       err.Error(),
		})
	}
	telemetry.Error("analysis.failed", map[string]any{
		"user_id":           doc.UserID,
		"document_id":       doc.ID,
		"error":             cause.Error(),
		"status_transition": documents.StatusProcessing + "->" + documents.StatusFailed,
	})
	return apierr.Internal("Document analysis failed", cause)
}

// ListForDocument returns the recommendations of a document the user owns.
func (s *Service) ListForDocument(ctx context.Context, userID, documentID string) ([]Recommendation, error) {
	doc, err := s.Docs.Get(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	return s.Repo.ListByDocument(ctx, doc.ID)
}

func (s *Service) Apply(ctx context.Context, userID, id string) (Recommendation, error) {
	return s.setStatus(ctx, userID, id, StatusAccepted)
}

func (s *Service) Reject(ctx context.Context, userID, id string) (Recommendation, error) {
	return s.setStatus(ctx, userID, id, StatusRejected)
}

func (s *Service) setStatus(ctx context.Context, userID, id, status string) (Recommendation, error) {
	rec, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Recommendation{}, apierr.NotFound("Recommendation not found")
		}
		return Recommendation{}, err
	}
	// Recommendations of other users' documents are reported as missing.
	if _, err := s.Docs.Repo.GetByID(ctx, userID, rec.DocumentID); err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			return Recommendation{}, apierr.NotFound("Recommendation not found")
		}
		return Recommendation{}, err
	}
	updated, err := s.Repo.UpdateStatus(ctx, id, status, s.now())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Recommendation{}, apierr.NotFound("Recommendation not found")
		}
		return Recommendation{}, err
	}
	telemetry.Info("recommendation.status_updated", map[string]any{
		"user_id":           userID,
		"recommendation_id": id,
		"status":            status,
	})
	return updated, nil
}
