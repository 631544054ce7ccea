package database

import (
	"context"

	"github.com/rickgao/quotesync/internal/model"
)

// SecuritiesSQL enumerates every security with its symbol.
const SecuritiesSQL = "SELECT zuniqueid, zsymbol FROM zsecurity ORDER BY zsymbol"

// Execer runs a statement and reports the rows it affected.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
}

// Tx is a store transaction.
type Tx interface {
	Execer

	// Savepoint runs fn inside a nested savepoint. If fn fails, only its
	// statements are rolled back and the error is returned.
	Savepoint(ctx context.Context, fn func(Execer) error) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Store is a finance store backend.
type Store interface {
	// Securities returns all securities ordered by symbol. Rows with a NULL
	// id or symbol are skipped.
	Securities(ctx context.Context) ([]model.Security, error)

	Begin(ctx context.Context) (Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// rowScanner is the common shape of database/sql and pgx rows.
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanSecurities(rows rowScanner) ([]model.Security, error) {
	securities := make([]model.Security, 0, 32)
	for rows.Next() {
		var id, symbol *string
		if err := rows.Scan(&id, &symbol); err != nil {
			return nil, err
		}
		if id == nil || symbol == nil {
			continue
		}
		securities = append(securities, model.Security{ID: *id, Symbol: *symbol})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return securities, nil
}
