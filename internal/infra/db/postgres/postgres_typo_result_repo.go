package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/oklog/ulid/v2"

	"paper-assistant/internal/domain"
	"paper-assistant/internal/domain/model"
	"paper-assistant/internal/domain/ports/repository"
)

var _ repository.TypoResultRepository = (*typoResultRepo)(nil)

type typoResultRepo struct {
	pool *pgxpool.Pool
}

func NewTypoResultRepo(pool *pgxpool.Pool) *typoResultRepo {
	return &typoResultRepo{pool: pool}
}

const typoResultColumns = `
id, user_id, text_hash, original_text, corrected_text, issues, provider, created_at`

func (r *typoResultRepo) Save(ctx context.Context, tx repository.Tx, result *model.TypoCheckResult) error {
	if result.ID == "" {
		result.ID = ulid.Make().String()
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}
	issues, err := json.Marshal(result.Issues)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO typo_check_results (id, user_id, text_hash, original_text, corrected_text, issues, provider, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`

	_, err = execSQL(ctx, r.pool, tx, q,
		result.ID, result.UserID, result.TextHash, result.OriginalText,
		result.CorrectedText, issues, result.Provider, result.CreatedAt)
	return err
}

func (r *typoResultRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.TypoCheckResult, error) {
	const q = `SELECT ` + typoResultColumns + ` FROM typo_check_results WHERE id = $1;`
	row, err := queryRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanTypoResult(row)
}

func (r *typoResultRepo) FindByUserAndHash(ctx context.Context, tx repository.Tx, userID, textHash string) (*model.TypoCheckResult, error) {
	const q = `
SELECT ` + typoResultColumns + `
FROM typo_check_results
WHERE user_id = $1 AND text_hash = $2
ORDER BY created_at DESC
LIMIT 1;`
	row, err := queryRow(ctx, r.pool, tx, q, userID, textHash)
	if err != nil {
		return nil, err
	}
	return scanTypoResult(row)
}

func scanTypoResult(row pgx.Row) (*model.TypoCheckResult, error) {
	var res model.TypoCheckResult
	var issues []byte
	err := row.Scan(
		&res.ID, &res.UserID, &res.TextHash, &res.OriginalText,
		&res.CorrectedText, &issues, &res.Provider, &res.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if len(issues) > 0 {
		if err := json.Unmarshal(issues, &res.Issues); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
	}
	return &res, nil
}
