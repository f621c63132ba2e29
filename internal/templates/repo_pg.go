package templates

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PGRepo struct {
	DB *sqlx.DB
}

type pgTemplate struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Category    string    `db:"category"`
	Fields      []byte    `db:"fields"`
	Content     string    `db:"content"`
	IsActive    bool      `db:"is_active"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (p pgTemplate) toTemplate() (Template, error) {
	t := Template{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Content:     p.Content,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if len(p.Fields) > 0 {
		if err := json.Unmarshal(p.Fields, &t.Fields); err != nil {
			return Template{}, fmt.Errorf("decode fields of template %s: %w", p.ID, err)
		}
	}
	return t, nil
}

const templateColumns = `id, title, description, category, fields, content, is_active, created_at, updated_at`

func (r *PGRepo) selectTemplates(ctx context.Context, query string, args ...any) ([]Template, error) {
	var rows []pgTemplate
	if err := r.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]Template, 0, len(rows))
	for _, row := range rows {
		t, err := row.toTemplate()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *PGRepo) ListActive(ctx context.Context, category string) ([]Template, error) {
	if category == "" {
		return r.selectTemplates(ctx, `SELECT `+templateColumns+` FROM templates WHERE is_active ORDER BY created_at`)
	}
	return r.selectTemplates(ctx, `SELECT `+templateColumns+` FROM templates WHERE is_active AND category = $1 ORDER BY created_at`, category)
}

func (r *PGRepo) Categories(ctx context.Context) ([]string, error) {
	var out []string
	if err := r.DB.SelectContext(ctx, &out, `SELECT DISTINCT category FROM templates WHERE is_active ORDER BY category`); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Template, error) {
	var row pgTemplate
	if err := r.DB.GetContext(ctx, &row, `SELECT `+templateColumns+` FROM templates WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Template{}, ErrNotFound
		}
		return Template{}, err
	}
	return row.toTemplate()
}

func (r *PGRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.GetContext(ctx, &n, `SELECT COUNT(*) FROM templates`)
	return n, err
}

func (r *PGRepo) InsertMany(ctx context.Context, tpls []Template) (err error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	const query = `INSERT INTO templates (` + templateColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for _, t := range tpls {
		fields, mErr := json.Marshal(t.Fields)
		if mErr != nil {
			return mErr
		}
		if _, err = tx.ExecContext(ctx, query, t.ID, t.Title, t.Description, t.Category, fields, t.Content, t.IsActive, t.CreatedAt, t.UpdatedAt); err != nil {
			return fmt.Errorf("insert template %q: %w", t.Title, err)
		}
	}
	return tx.Commit()
}

type PGUserRepo struct {
	DB *sqlx.DB
}

type pgUserTemplate struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	TemplateID string    `db:"template_id"`
	Title      string    `db:"title"`
	Data       []byte    `db:"data"`
	IsActive   bool      `db:"is_active"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (p pgUserTemplate) toUserTemplate() (UserTemplate, error) {
	ut := UserTemplate{
		ID:         p.ID,
		UserID:     p.UserID,
		TemplateID: p.TemplateID,
		Title:      p.Title,
		IsActive:   p.IsActive,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
	if len(p.Data) > 0 {
		if err := json.Unmarshal(p.Data, &ut.Data); err != nil {
			return UserTemplate{}, fmt.Errorf("decode data of user template %s: %w", p.ID, err)
		}
	}
	return ut, nil
}

const userTemplateColumns = `id, user_id, template_id, title, data, is_active, created_at, updated_at`

func (r *PGUserRepo) ListActiveByUser(ctx context.Context, userID string) ([]UserTemplate, error) {
	var rows []pgUserTemplate
	query := `SELECT ` + userTemplateColumns + ` FROM user_templates WHERE user_id = $1 AND is_active ORDER BY updated_at DESC`
	if err := r.DB.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, err
	}
	out := make([]UserTemplate, 0, len(rows))
	for _, row := range rows {
		ut, err := row.toUserTemplate()
		if err != nil {
			return nil, err
		}
		out = append(out, ut)
	}
	return out, nil
}

// Upsert relies on the partial unique index over active rows.
func (r *PGUserRepo) Upsert(ctx context.Context, ut UserTemplate) (UserTemplate, error) {
	if ut.ID == "" {
		ut.ID = uuid.NewString()
	}
	data, err := json.Marshal(ut.Data)
	if err != nil {
		return UserTemplate{}, err
	}
	query := `
INSERT INTO user_templates (` + userTemplateColumns + `)
VALUES ($1, $2, $3, $4, $5, TRUE, $6, $7)
ON CONFLICT (user_id, template_id) WHERE is_active
DO UPDATE SET title = EXCLUDED.title, data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
RETURNING ` + userTemplateColumns
	var row pgUserTemplate
	if err := r.DB.GetContext(ctx, &row, query, ut.ID, ut.UserID, ut.TemplateID, ut.Title, data, ut.CreatedAt, ut.UpdatedAt); err != nil {
		return UserTemplate{}, err
	}
	return row.toUserTemplate()
}

func (r *PGUserRepo) Deactivate(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE user_templates SET is_active = FALSE, updated_at = now() WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
