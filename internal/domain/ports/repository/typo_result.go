package repository

import (
	"context"

	"paper-assistant/internal/domain/model"
)

// TypoResultRepository stores completed corrections.
type TypoResultRepository interface {
	Save(ctx context.Context, tx Tx, result *model.TypoCheckResult) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.TypoCheckResult, error)
	FindByUserAndHash(ctx context.Context, tx Tx, userID, textHash string) (*model.TypoCheckResult, error)
}
