package documents

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryRepo keeps documents in process. Documents of other users behave as
// missing, like the owner-scoped queries of the database repos.
type MemoryRepo struct {
	mu   sync.RWMutex
	docs map[string]Document
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{docs: map[string]Document{}}
}

// owned must be called with mu held.
func (r *MemoryRepo) owned(userID, id string) (Document, bool) {
	doc, ok := r.docs[id]
	return doc, ok && doc.UserID == userID
}

func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	r.docs[doc.ID] = doc
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if doc, ok := r.owned(userID, id); ok {
		return doc, nil
	}
	return Document{}, ErrNotFound
}

// ListByUser returns the user's documents, newest first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := []Document{}
	for _, doc := range r.docs {
		if doc.UserID == userID {
			out = append(out, doc)
		}
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b Document) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

// TransitionStatus moves a document from one status to another. A document
// in any other status is returned unchanged with ErrStatusConflict.
func (r *MemoryRepo) TransitionStatus(ctx context.Context, userID, id, from, to string, at time.Time) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.owned(userID, id)
	switch {
	case !ok:
		return Document{}, ErrNotFound
	case doc.Status != from:
		return doc, ErrStatusConflict
	}
	doc.Status, doc.UpdatedAt = to, at
	if to == StatusCompleted {
		doc.AnalyzedAt = &at
	}
	r.docs[id] = doc
	return doc, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.owned(userID, id); !ok {
		return ErrNotFound
	}
	delete(r.docs, id)
	return nil
}
