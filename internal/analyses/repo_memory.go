package analyses

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo stores recommendations in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Recommendation
	// order keeps insertion order so equal sort keys stay stable.
	order []string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Recommendation)}
}

func (r *MemoryRepo) CreateMany(ctx context.Context, recs []Recommendation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range recs {
		if _, ok := r.byID[rec.ID]; !ok {
			r.order = append(r.order, rec.ID)
		}
		r.byID[rec.ID] = rec
	}
	return nil
}

func (r *MemoryRepo) ListByDocument(ctx context.Context, documentID string) ([]Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Recommendation, 0)
	for _, id := range r.order {
		if rec := r.byID[id]; rec.DocumentID == documentID {
			out = append(out, rec)
		}
	}
	r.mu.RUnlock()
	sortRecommendations(out)
	return out, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return Recommendation{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byID[id]
	if !ok {
		return Recommendation{}, ErrNotFound
	}
	return rec, nil
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, id, status string, at time.Time) (Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return Recommendation{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id]
	if !ok {
		return Recommendation{}, ErrNotFound
	}
	rec.Status = status
	rec.UpdatedAt = at
	r.byID[id] = rec
	return rec, nil
}

func (r *MemoryRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.order[:0]
	for _, id := range r.order {
		if r.byID[id].DocumentID == documentID {
			delete(r.byID, id)
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
	return nil
}
