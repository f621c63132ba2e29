package templates

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepo stores templates in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu    sync.RWMutex
	items []Template
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) ListActive(ctx context.Context, category string) ([]Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Template, 0, len(r.items))
	for _, t := range r.items {
		if !t.IsActive || (category != "" && t.Category != category) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *MemoryRepo) Categories(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, t := range r.items {
		if t.IsActive && !seen[t.Category] {
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Template, error) {
	if err := ctx.Err(); err != nil {
		return Template{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.items {
		if t.ID == id {
			return t, nil
		}
	}
	return Template{}, ErrNotFound
}

func (r *MemoryRepo) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.items)), nil
}

func (r *MemoryRepo) InsertMany(ctx context.Context, tpls []Template) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, tpls...)
	return nil
}

// MemoryUserRepo stores user templates in memory and is safe for concurrent use.
type MemoryUserRepo struct {
	mu   sync.Mutex
	byID map[string]UserTemplate
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{byID: make(map[string]UserTemplate)}
}

func (r *MemoryUserRepo) ListActiveByUser(ctx context.Context, userID string) ([]UserTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	out := make([]UserTemplate, 0)
	for _, ut := range r.byID {
		if ut.UserID == userID && ut.IsActive {
			out = append(out, ut)
		}
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (r *MemoryUserRepo) Upsert(ctx context.Context, ut UserTemplate) (UserTemplate, error) {
	if err := ctx.Err(); err != nil {
		return UserTemplate{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.byID {
		if existing.UserID == ut.UserID && existing.TemplateID == ut.TemplateID && existing.IsActive {
			existing.Title = ut.Title
			existing.Data = ut.Data
			existing.UpdatedAt = ut.UpdatedAt
			r.byID[id] = existing
			return existing, nil
		}
	}
	if ut.ID == "" {
		ut.ID = uuid.NewString()
	}
	ut.IsActive = true
	r.byID[ut.ID] = ut
	return ut, nil
}

func (r *MemoryUserRepo) Deactivate(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ut, ok := r.byID[id]
	if !ok || ut.UserID != userID {
		return ErrNotFound
	}
	ut.IsActive = false
	r.byID[id] = ut
	return nil
}
