// Package adapters provides the database adapters of the PostgreSQL cookie store.
//
// pgxpool.Pool, sql.DB and sqlx.DB connections are all driven through the DBAdapter interface,
// so the store builds its SQL once and executes it on whichever connection type it was given.
package adapters
