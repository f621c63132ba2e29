package analyses

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type PGRepo struct {
	DB *sqlx.DB
}

type pgRecommendation struct {
	ID            string    `db:"id"`
	DocumentID    string    `db:"document_id"`
	Type          string    `db:"type"`
	Content       string    `db:"content"`
	OriginalText  string    `db:"original_text"`
	SuggestedText string    `db:"suggested_text"`
	Severity      string    `db:"severity"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (p pgRecommendation) toRecommendation() Recommendation {
	return Recommendation(p)
}

const recommendationColumns = `id, document_id, type, content, original_text, suggested_text, severity, status, created_at, updated_at`

// CreateMany inserts every recommendation in one transaction.
func (r *PGRepo) CreateMany(ctx context.Context, recs []Recommendation) (err error) {
	if len(recs) == 0 {
		return nil
	}
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `
INSERT INTO recommendations (` + recommendationColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for _, rec := range recs {
		if _, err = tx.ExecContext(ctx, query,
			rec.ID,
			rec.DocumentID,
			rec.Type,
			rec.Content,
			rec.OriginalText,
			rec.SuggestedText,
			rec.Severity,
			rec.Status,
			rec.CreatedAt,
			rec.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert recommendation %s: %w", rec.ID, err)
		}
	}
	return tx.Commit()
}

func (r *PGRepo) ListByDocument(ctx context.Context, documentID string) ([]Recommendation, error) {
	query := `SELECT ` + recommendationColumns + ` FROM recommendations WHERE document_id = $1
ORDER BY CASE severity WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0 END DESC, created_at DESC`
	var rows []pgRecommendation
	if err := r.DB.SelectContext(ctx, &rows, query, documentID); err != nil {
		return nil, err
	}
	out := make([]Recommendation, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toRecommendation())
	}
	return out, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Recommendation, error) {
	var row pgRecommendation
	query := `SELECT ` + recommendationColumns + ` FROM recommendations WHERE id = $1`
	if err := r.DB.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Recommendation{}, ErrNotFound
		}
		return Recommendation{}, err
	}
	return row.toRecommendation(), nil
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id, status string, at time.Time) (Recommendation, error) {
	var row pgRecommendation
	query := `UPDATE recommendations SET status = $2, updated_at = $3 WHERE id = $1 RETURNING ` + recommendationColumns
	if err := r.DB.GetContext(ctx, &row, query, id, status, at); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Recommendation{}, ErrNotFound
		}
		return Recommendation{}, err
	}
	return row.toRecommendation(), nil
}

func (r *PGRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM recommendations WHERE document_id = $1`, documentID)
	return err
}
