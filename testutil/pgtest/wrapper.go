package pgtest

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/cookie-interceptor-go/cookiestore/postgresstore"
)

// Adapter types.
const (
	TypePGXPool = "pgx.pool"
	TypeSQLDB   = "sql.db"
	TypeSQLXDB  = "sqlx.db"
)

// AdapterTypes lists every adapter type a CookieStore can be built on.
var AdapterTypes = []string{TypePGXPool, TypeSQLDB, TypeSQLXDB}

// Wrapper owns a connection and the CookieStore built on it.
type Wrapper interface {
	CookieStore() *postgresstore.CookieStore
	TableName() string
	// Close drops the wrapper's table and closes the connection.
	Close()
}

type wrapper struct {
	store     *postgresstore.CookieStore
	tableName string
	exec      func(ctx context.Context, sql string) error
	close     func()
}

func (w *wrapper) CookieStore() *postgresstore.CookieStore {
	return w.store
}

func (w *wrapper) TableName() string {
	return w.tableName
}

func (w *wrapper) Close() {
	_ = w.exec(context.Background(), "DROP TABLE IF EXISTS "+w.tableName)
	w.close()
}

// NewWrapper connects with adapterType, creates a CookieStore on a fresh uniquely named table
// and ensures its schema. The wrapper is closed when t finishes.
func NewWrapper(t testing.TB, adapterType string, options ...postgresstore.Option) Wrapper {
	t.Helper()

	ctx := context.Background()
	dsn := DSN(t)
	tableName := "cookies_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	options = append([]postgresstore.Option{postgresstore.WithTableName(tableName)}, options...)

	w := &wrapper{tableName: tableName}

	switch adapterType {
	case TypeSQLDB:
		db, err := SQLDB(ctx, dsn)
		require.NoError(t, err, "error connecting to DB in test setup")

		w.store, err = postgresstore.NewCookieStoreFromSQLDB(db, options...)
		require.NoError(t, err, "error creating cookie store")
		w.exec = func(ctx context.Context, query string) error {
			_, err := db.ExecContext(ctx, query)
			return err
		}
		w.close = func() { _ = db.Close() }

	case TypeSQLXDB:
		db, err := SQLX(ctx, dsn)
		require.NoError(t, err, "error connecting to DB in test setup")

		w.store, err = postgresstore.NewCookieStoreFromSQLX(db, options...)
		require.NoError(t, err, "error creating cookie store")
		w.exec = func(ctx context.Context, query string) error {
			_, err := db.ExecContext(ctx, query)
			return err
		}
		w.close = func() { _ = db.Close() }

	default:
		pool, err := PGXPool(ctx, dsn)
		require.NoError(t, err, "error connecting to DB pool in test setup")

		w.store, err = postgresstore.NewCookieStoreFromPGXPool(pool, options...)
		require.NoError(t, err, "error creating cookie store")
		w.exec = func(ctx context.Context, query string) error {
			_, err := pool.Exec(ctx, query)
			return err
		}
		w.close = pool.Close
	}

	t.Cleanup(w.Close)
	require.NoError(t, w.store.EnsureSchema(ctx), "error creating cookie table")

	return w
}
