package analyses

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/MattyO101/Legalassist-MPV/internal/shared/storage/mongodb"
)

// Runs against a real server when MONGODB_TEST_URL is set.
func TestMongoRepoIntegration(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URL")
	if uri == "" {
		t.Skip("MONGODB_TEST_URL not set")
	}
	ctx := context.Background()
	client, db, err := mongodb.Connect(ctx, uri, "legalassist_test_"+uuid.NewString()[:8])
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = mongodb.Disconnect(client)
	})

	repo := NewMongoRepo(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}
	base := time.Now().UTC().Truncate(time.Millisecond)
	err = repo.CreateMany(ctx, []Recommendation{
		{ID: "low", DocumentID: "d1", Severity: "low", Status: StatusPending, CreatedAt: base.Add(time.Hour), UpdatedAt: base},
		{ID: "high-old", DocumentID: "d1", Severity: "high", Status: StatusPending, CreatedAt: base, UpdatedAt: base},
		{ID: "high-new", DocumentID: "d1", Severity: "high", Status: StatusPending, CreatedAt: base.Add(time.Minute), UpdatedAt: base},
		{ID: "other", DocumentID: "d2", Severity: "medium", Status: StatusPending, CreatedAt: base, UpdatedAt: base},
	})
	if err != nil {
		t.Fatalf("CreateMany: %v", err)
	}

	recs, err := repo.ListByDocument(ctx, "d1")
	if err != nil {
		t.Fatalf("ListByDocument: %v", err)
	}
	want := []string{"high-new", "high-old", "low"}
	if len(recs) != len(want) {
		t.Fatalf("expected %v, got %+v", want, recs)
	}
	for i, id := range want {
		if recs[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, recs[i].ID)
		}
	}

	rec, err := repo.UpdateStatus(ctx, "low", StatusAccepted, base.Add(2*time.Hour))
	if err != nil || rec.Status != StatusAccepted {
		t.Fatalf("UpdateStatus: %+v %v", rec, err)
	}
	if _, err := repo.UpdateStatus(ctx, "missing", StatusAccepted, base); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := repo.DeleteByDocument(ctx, "d1"); err != nil {
		t.Fatalf("DeleteByDocument: %v", err)
	}
	if recs, _ := repo.ListByDocument(ctx, "d1"); len(recs) != 0 {
		t.Fatalf("expected d1 recommendations removed, got %d", len(recs))
	}
	if _, err := repo.GetByID(ctx, "other"); err != nil {
		t.Fatalf("expected d2 recommendation kept: %v", err)
	}
}
