package adapters

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// sqlConn is the part of *sql.DB the adapter needs. *sqlx.DB provides it through its embedded *sql.DB.
type sqlConn interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// StdAdapter implements DBAdapter for database/sql handles.
type StdAdapter struct {
	conn sqlConn
}

// NewSQLAdapter creates an adapter for a sql.DB.
func NewSQLAdapter(db *sql.DB) *StdAdapter {
	return &StdAdapter{conn: db}
}

// NewSQLXAdapter creates an adapter for a sqlx.DB.
func NewSQLXAdapter(db *sqlx.DB) *StdAdapter {
	return &StdAdapter{conn: db}
}

// Query runs query. *sql.Rows already implements DBRows.
func (a *StdAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	rows, err := a.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// Exec runs a statement. sql.Result already implements DBResult.
func (a *StdAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	return a.conn.ExecContext(ctx, query)
}

var _ DBRows = (*sql.Rows)(nil)
