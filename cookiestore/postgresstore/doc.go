// Package postgresstore provides a PostgreSQL-backed cookiehook.CookieService.
//
// The store can be created from a pgxpool.Pool, a sql.DB (for example opened with the lib/pq driver)
// or a sqlx.DB. Cookies live in one table keyed by domain, path and name; EnsureSchema creates it.
//
//	pool, err := pgxpool.New(ctx, dsn)
//	store, err := postgresstore.NewCookieStoreFromPGXPool(pool, postgresstore.WithTableName("browser_cookies"))
//	err = store.EnsureSchema(ctx)
//
// The accept flags are kept in memory per store instance. The async variants complete before they return.
package postgresstore
