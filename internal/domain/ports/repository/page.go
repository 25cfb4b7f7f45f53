package repository

import (
	"context"

	"paper-assistant/internal/domain/model"
)

// PageRepository stores extracted page text. ReplaceForDocument drops
// any previously extracted pages before inserting, so re-extraction is
// idempotent.
type PageRepository interface {
	ReplaceForDocument(ctx context.Context, tx Tx, documentID string, pages []*model.Page) error
	CountForDocument(ctx context.Context, tx Tx, documentID string) (int, error)
}
