package documents

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

type PGRepo struct {
	DB *sqlx.DB
}

type pgDocument struct {
	ID               string       `db:"id"`
	UserID           string       `db:"user_id"`
	Title            string       `db:"title"`
	OriginalFilename string       `db:"original_filename"`
	Filename         string       `db:"filename"`
	FileType         string       `db:"file_type"`
	FileSize         int64        `db:"file_size"`
	MimeType         string       `db:"mime_type"`
	Status           string       `db:"status"`
	AnalyzedAt       sql.NullTime `db:"analyzed_at"`
	CreatedAt        time.Time    `db:"created_at"`
	UpdatedAt        time.Time    `db:"updated_at"`
}

func (p pgDocument) toDocument() Document {
	doc := Document{
		ID:               p.ID,
		UserID:           p.UserID,
		Title:            p.Title,
		OriginalFilename: p.OriginalFilename,
		Filename:         p.Filename,
		FileType:         p.FileType,
		FileSize:         p.FileSize,
		MimeType:         p.MimeType,
		Status:           p.Status,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.AnalyzedAt.Valid {
		at := p.AnalyzedAt.Time
		doc.AnalyzedAt = &at
	}
	return doc
}

const documentColumns = `id, user_id, title, original_filename, filename, file_type, file_size, mime_type, status, analyzed_at, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (id, user_id, title, original_filename, filename, file_type, file_size, mime_type, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.DB.ExecContext(ctx, query,
		doc.ID,
		doc.UserID,
		doc.Title,
		doc.OriginalFilename,
		doc.Filename,
		doc.FileType,
		doc.FileSize,
		doc.MimeType,
		doc.Status,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID, id string) (Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 AND user_id = $2 LIMIT 1`
	var row pgDocument
	if err := r.DB.GetContext(ctx, &row, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return row.toDocument(), nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE user_id = $1 ORDER BY created_at DESC`
	var rows []pgDocument
	if err := r.DB.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, err
	}
	out := make([]Document, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDocument())
	}
	return out, nil
}

func (r *PGRepo) TransitionStatus(ctx context.Context, userID, id, from, to string, at time.Time) (Document, error) {
	query := `
UPDATE documents
SET status = $4,
    updated_at = $5,
    analyzed_at = CASE WHEN $4 = 'completed' THEN $5 ELSE analyzed_at END
WHERE id = $1 AND user_id = $2 AND status = $3
RETURNING ` + documentColumns
	var row pgDocument
	err := r.DB.GetContext(ctx, &row, query, id, userID, from, to, at)
	if err == nil {
		return row.toDocument(), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Document{}, err
	}
	current, getErr := r.GetByID(ctx, userID, id)
	if getErr != nil {
		return Document{}, getErr
	}
	return current, ErrStatusConflict
}

func (r *PGRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE id = $1 AND user_id = $2`, id, userID)
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
