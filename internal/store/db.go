package store

import (
	"context"
	"database/sql"
)

// Narrow query interfaces let store methods accept either the pool or an
// open transaction, and keep the test stubs small.

type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Getter interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

type Selecter interface {
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

type DB interface {
	Execer
	Getter
	Selecter
}

// Tx is what the locked claim and settlement statements need: they both
// write and read rows back in the same transaction.
type Tx interface {
	Execer
	Getter
}
