package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle passed back into repository
// methods. Concrete repos type-switch it onto the driver executor.
type Tx any

// NoTX is passed when a method should run directly on the pool.
var NoTX Tx = nil

// TransactionManager runs fn inside a database transaction, committing
// on nil and rolling back on error.
type TransactionManager interface {
	WithTx(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
