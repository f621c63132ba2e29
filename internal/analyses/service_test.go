package analyses

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/MattyO101/Legalassist-MPV/internal/analyses/recommendations"
	"github.com/MattyO101/Legalassist-MPV/internal/documents"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/apierr"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/storage/object/local"
)

type fixture struct {
	svc     *Service
	docs    *documents.Service
	docRepo *documents.MemoryRepo
	repo    *MemoryRepo
}

func newFixture(t *testing.T, rand func() float64) fixture {
	t.Helper()
	repo := NewMemoryRepo()
	docRepo := documents.NewMemoryRepo()
	docs := &documents.Service{
		Store:      local.New(t.TempDir()),
		Repo:       docRepo,
		Dependents: repo,
	}
	engine := recommendations.NewEngine()
	engine.Rand = rand
	return fixture{
		svc:     &Service{Docs: docs, Repo: repo, Engine: engine},
		docs:    docs,
		docRepo: docRepo,
		repo:    repo,
	}
}

func noRandom() float64 { return 0 }

func (f fixture) upload(t *testing.T, userID, name, body string) documents.Document {
	t.Helper()
	doc, err := f.docs.Upload(context.Background(), userID, documents.Upload{
		FileName: name,
		Size:     int64(len(body)),
		Body:     strings.NewReader(body),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	return doc
}

func requireAPIError(t *testing.T, err error, status int, message string) {
	t.Helper()
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *apierr.Error, got %v", err)
	}
	if apiErr.Status != status || apiErr.Message != message {
		t.Fatalf("expected %d %q, got %d %q", status, message, apiErr.Status, apiErr.Message)
	}
}

func TestAnalyzeStoresPendingRecommendationsAndCompletes(t *testing.T) {
	f := newFixture(t, noRandom)
	doc := f.upload(t, "u1", "contract.txt", "The supplier may terminate. Payment is due. Liability is capped.")

	count, err := f.svc.Analyze(context.Background(), "u1", doc.ID)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 recommendations, got %d", count)
	}

	stored, err := f.docRepo.GetByID(context.Background(), "u1", doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != documents.StatusCompleted || stored.AnalyzedAt == nil {
		t.Fatalf("expected completed document with analyzedAt, got %+v", stored)
	}

	recs, err := f.svc.ListForDocument(context.Background(), "u1", doc.ID)
	if err != nil {
		t.Fatalf("ListForDocument: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 stored recommendations, got %d", len(recs))
	}
	for _, rec := range recs {
		if rec.Status != StatusPending || rec.DocumentID != doc.ID {
			t.Fatalf("unexpected recommendation %+v", rec)
		}
		if rec.Severity != recommendations.SeverityHigh {
			t.Fatalf("expected high severity matches, got %q", rec.Severity)
		}
	}
}

func TestAnalyzeFallsBackWhenTextIsUnreadable(t *testing.T) {
	f := newFixture(t, noRandom)
	doc := documents.Document{
		ID:       "d1",
		UserID:   "u1",
		Filename: "missing/key.pdf",
		FileType: "pdf",
		Status:   documents.StatusUploaded,
	}
	if err := f.docRepo.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create: %v", err)
	}

	count, err := f.svc.Analyze(context.Background(), "u1", "d1")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	// The sample text matches no rule, so only the fallbacks are stored.
	if count != len(recommendations.Fallbacks) {
		t.Fatalf("expected %d fallbacks, got %d", len(recommendations.Fallbacks), count)
	}
}

func TestAnalyzeRejectsRepeatRuns(t *testing.T) {
	f := newFixture(t, noRandom)
	doc := f.upload(t, "u1", "a.txt", "warranty")
	if _, err := f.svc.Analyze(context.Background(), "u1", doc.ID); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	before, err := f.repo.ListByDocument(context.Background(), doc.ID)
	if err != nil || len(before) == 0 {
		t.Fatalf("expected stored recommendations, got %d %v", len(before), err)
	}
	_, err = f.svc.Analyze(context.Background(), "u1", doc.ID)
	requireAPIError(t, err, http.StatusBadRequest, "Document has already been analyzed")
	after, err := f.repo.ListByDocument(context.Background(), doc.ID)
	if err != nil || len(after) != len(before) {
		t.Fatalf("repeat analyze changed recommendations: %d -> %d (%v)", len(before), len(after), err)
	}

	_, err = f.svc.Analyze(context.Background(), "u2", doc.ID)
	requireAPIError(t, err, http.StatusNotFound, "Document not found")
}

type failingRepo struct {
	*MemoryRepo
}

func (failingRepo) CreateMany(ctx context.Context, recs []Recommendation) error {
	return errors.New("disk full")
}

func TestAnalyzeMarksFailedOnStoreError(t *testing.T) {
	f := newFixture(t, noRandom)
	f.svc.Repo = failingRepo{MemoryRepo: f.repo}
	doc := f.upload(t, "u1", "a.txt", "payment")

	_, err := f.svc.Analyze(context.Background(), "u1", doc.ID)
	requireAPIError(t, err, http.StatusInternalServerError, "Document analysis failed")

	stored, _ := f.docRepo.GetByID(context.Background(), "u1", doc.ID)
	if stored.Status != documents.StatusFailed {
		t.Fatalf("expected failed status, got %q", stored.Status)
	}
	_, err = f.svc.Analyze(context.Background(), "u1", doc.ID)
	requireAPIError(t, err, http.StatusBadRequest, "Document analysis has already failed")
}

func TestApplyAndRejectAreScopedToOwner(t *testing.T) {
	f := newFixture(t, noRandom)
	doc := f.upload(t, "owner", "a.txt", "termination")
	if _, err := f.svc.Analyze(context.Background(), "owner", doc.ID); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	recs, _ := f.repo.ListByDocument(context.Background(), doc.ID)
	target := recs[0].ID

	_, err := f.svc.Apply(context.Background(), "intruder", target)
	requireAPIError(t, err, http.StatusNotFound, "Recommendation not found")

	applied, err := f.svc.Apply(context.Background(), "owner", target)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if applied.Status != StatusAccepted {
		t.Fatalf("expected accepted, got %q", applied.Status)
	}
	rejected, err := f.svc.Reject(context.Background(), "owner", target)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.Status != StatusRejected {
		t.Fatalf("expected rejected, got %q", rejected.Status)
	}

	_, err = f.svc.Reject(context.Background(), "owner", "nope")
	requireAPIError(t, err, http.StatusNotFound, "Recommendation not found")
}

func TestDeletingDocumentRemovesRecommendations(t *testing.T) {
	f := newFixture(t, noRandom)
	doc := f.upload(t, "u1", "a.txt", "confidential")
	if _, err := f.svc.Analyze(context.Background(), "u1", doc.ID); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if err := f.docs.Delete(context.Background(), "u1", doc.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	recs, _ := f.repo.ListByDocument(context.Background(), doc.ID)
	if len(recs) != 0 {
		t.Fatalf("expected recommendations removed, got %d", len(recs))
	}
}

func TestListOrdersBySeverityThenNewest(t *testing.T) {
	repo := NewMemoryRepo()
	base := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	_ = repo.CreateMany(context.Background(), []Recommendation{
		{ID: "low", DocumentID: "d", Severity: "low", CreatedAt: base.Add(3 * time.Hour)},
		{ID: "high-old", DocumentID: "d", Severity: "high", CreatedAt: base},
		{ID: "medium", DocumentID: "d", Severity: "medium", CreatedAt: base},
		{ID: "high-new", DocumentID: "d", Severity: "high", CreatedAt: base.Add(time.Hour)},
		{ID: "other", DocumentID: "x", Severity: "high", CreatedAt: base},
	})
	recs, err := repo.ListByDocument(context.Background(), "d")
	if err != nil {
		t.Fatalf("ListByDocument: %v", err)
	}
	want := []string{"high-new", "high-old", "medium", "low"}
	if len(recs) != len(want) {
		t.Fatalf("expected %d recommendations, got %d", len(want), len(recs))
	}
	for i, id := range want {
		if recs[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, recs[i].ID)
		}
	}
}
