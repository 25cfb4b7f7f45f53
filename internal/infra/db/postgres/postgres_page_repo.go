package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"paper-assistant/internal/domain/model"
	"paper-assistant/internal/domain/ports/repository"
)

var _ repository.PageRepository = (*pageRepo)(nil)

type pageRepo struct {
	pool *pgxpool.Pool
	tm   repository.TransactionManager
}

func NewPageRepo(pool *pgxpool.Pool, tm repository.TransactionManager) *pageRepo {
	return &pageRepo{pool: pool, tm: tm}
}

// ReplaceForDocument swaps out every stored page of a document. The
// delete and the inserts always run inside one transaction (the
// caller's, or one opened here) so a failed re-extraction never leaves
// the document half-replaced.
func (r *pageRepo) ReplaceForDocument(ctx context.Context, tx repository.Tx, documentID string, pages []*model.Page) error {
	if tx != nil {
		return r.replace(ctx, tx, documentID, pages)
	}
	return r.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		return r.replace(ctx, tx, documentID, pages)
	})
}

func (r *pageRepo) replace(ctx context.Context, tx repository.Tx, documentID string, pages []*model.Page) error {
	const del = `DELETE FROM pages WHERE document_id = $1;`
	if _, err := execSQL(ctx, r.pool, tx, del, documentID); err != nil {
		return err
	}

	const ins = `
INSERT INTO pages (id, document_id, page_number, content, content_normalized)
VALUES ($1, $2, $3, $4, $5);`
	for _, p := range pages {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if _, err := execSQL(ctx, r.pool, tx, ins, p.ID, p.DocumentID, p.PageNumber, p.Content, p.ContentNormalized); err != nil {
			return err
		}
	}
	return nil
}

func (r *pageRepo) CountForDocument(ctx context.Context, tx repository.Tx, documentID string) (int, error) {
	const q = `SELECT COUNT(*) FROM pages WHERE document_id = $1;`
	row, err := queryRow(ctx, r.pool, tx, q, documentID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
