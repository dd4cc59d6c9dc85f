package postgresstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/cookie-interceptor-go/cookiehook"
	"github.com/AntonStoeckl/cookie-interceptor-go/cookiestore"
	"github.com/AntonStoeckl/cookie-interceptor-go/cookiestore/postgresstore/internal/adapters"
)

const (
	defaultTableName = "cookies"
	dialectPostgres  = "postgres"

	colDomain    = "domain"
	colPath      = "path"
	colName      = "name"
	colValue     = "value"
	colHostOnly  = "host_only"
	colSecure    = "secure"
	colHTTPOnly  = "http_only"
	colExpiresAt = "expires_at"
	colCreatedAt = "created_at"

	conflictTarget = "domain, path, name"

	logMsgSQLExecuted        = "executed sql for: "
	logMsgBuildQueryFailed   = "failed to build query"
	logMsgDBQueryFailed      = "database query execution failed"
	logMsgDBExecFailed       = "database execution failed"
	logMsgCloseRowsFailed    = "failed to close database rows"
	logMsgRowsAffectedFailed = "failed to get rows affected count"
	logAttrError             = "error"
	logAttrQuery             = "query"
	logAttrDurationMS        = "duration_ms"
	logActionSchema          = "schema"
	logActionSet             = "set"
	logActionDelete          = "delete"
	logActionSelect          = "select"
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS %[1]s (
	domain     TEXT        NOT NULL,
	path       TEXT        NOT NULL,
	name       TEXT        NOT NULL,
	value      TEXT        NOT NULL,
	host_only  BOOLEAN     NOT NULL,
	secure     BOOLEAN     NOT NULL,
	http_only  BOOLEAN     NOT NULL,
	expires_at TIMESTAMPTZ NULL,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (domain, path, name)
);
CREATE INDEX IF NOT EXISTS %[1]s_expires_at_idx ON %[1]s (expires_at)`

// CookieStore is a PostgreSQL-backed cookiehook.CookieService.
type CookieStore struct {
	cookiestore.AcceptPolicy

	db        adapters.DBAdapter
	tableName string
	logger    cookiehook.Logger
	now       func() time.Time
}

// NewCookieStoreFromPGXPool creates a CookieStore using a pgx Pool.
func NewCookieStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*CookieStore, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newCookieStore(adapters.NewPGXAdapter(db), options...)
}

// NewCookieStoreFromSQLDB creates a CookieStore using a sql.DB.
func NewCookieStoreFromSQLDB(db *sql.DB, options ...Option) (*CookieStore, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newCookieStore(adapters.NewSQLAdapter(db), options...)
}

// NewCookieStoreFromSQLX creates a CookieStore using a sqlx.DB.
func NewCookieStoreFromSQLX(db *sqlx.DB, options ...Option) (*CookieStore, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newCookieStore(adapters.NewSQLXAdapter(db), options...)
}

func newCookieStore(db adapters.DBAdapter, options ...Option) (*CookieStore, error) {
	s := &CookieStore{
		db:        db,
		tableName: defaultTableName,
		now:       time.Now,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// EnsureSchema creates the cookie table and its expiry index if they do not exist.
func (s *CookieStore) EnsureSchema(ctx context.Context) error {
	_, err := s.exec(ctx, fmt.Sprintf(createTableSQL, s.tableName), logActionSchema)
	if err != nil {
		return errors.Join(ErrCreatingSchemaFailed, err)
	}

	return nil
}

// SetCookie stores the cookie described by value for url.
// An already expired cookie deletes the stored cookie with the same domain, path and name.
func (s *CookieStore) SetCookie(ctx context.Context, url, value string) error {
	if !s.AcceptCookie() {
		return cookiestore.ErrCookiesDisabled
	}

	now := s.now()

	entry, err := cookiestore.ParseEntry(url, value, now)
	if err != nil {
		return err
	}

	var sqlQuery string
	if entry.Expired(now) {
		sqlQuery, err = s.buildDeleteEntryQuery(entry)
	} else {
		sqlQuery, err = s.buildUpsertQuery(entry)
	}

	if err != nil {
		return err
	}

	_, err = s.exec(ctx, sqlQuery, logActionSet)

	return err
}

// SetCookieAsync stores the cookie and reports success to callback.
func (s *CookieStore) SetCookieAsync(ctx context.Context, url, value string, callback cookiehook.ValueCallback[bool]) {
	err := s.SetCookie(ctx, url, value)

	if callback != nil {
		callback(err == nil)
	}
}

// Cookie returns the Cookie header value for url, or "" if no cookie matches.
func (s *CookieStore) Cookie(ctx context.Context, url string) (string, error) {
	u, err := cookiestore.ParseURL(url)
	if err != nil {
		return "", err
	}

	sqlQuery, err := s.buildSelectQuery(cookiestore.CandidateHosts(u.Hostname()), s.now())
	if err != nil {
		return "", err
	}

	entries, err := s.queryEntries(ctx, sqlQuery)
	if err != nil {
		return "", err
	}

	matching := make([]cookiestore.Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.Matches(u) {
			matching = append(matching, entry)
		}
	}

	return cookiestore.FormatCookieHeader(matching), nil
}

// RemoveSessionCookie deletes every cookie without expiry.
func (s *CookieStore) RemoveSessionCookie(ctx context.Context) error {
	_, err := s.deleteWhere(ctx, goqu.C(colExpiresAt).IsNull())

	return err
}

// RemoveSessionCookiesAsync deletes every cookie without expiry and reports to callback whether any was deleted.
func (s *CookieStore) RemoveSessionCookiesAsync(ctx context.Context, callback cookiehook.ValueCallback[bool]) {
	removed, err := s.deleteWhere(ctx, goqu.C(colExpiresAt).IsNull())

	if callback != nil {
		callback(err == nil && removed > 0)
	}
}

// RemoveAllCookie deletes every cookie.
func (s *CookieStore) RemoveAllCookie(ctx context.Context) error {
	_, err := s.deleteWhere(ctx)

	return err
}

// RemoveAllCookiesAsync deletes every cookie and reports to callback whether any was deleted.
func (s *CookieStore) RemoveAllCookiesAsync(ctx context.Context, callback cookiehook.ValueCallback[bool]) {
	removed, err := s.deleteWhere(ctx)

	if callback != nil {
		callback(err == nil && removed > 0)
	}
}

// RemoveExpiredCookie deletes every cookie past its expiry.
func (s *CookieStore) RemoveExpiredCookie(ctx context.Context) error {
	_, err := s.deleteWhere(ctx, goqu.C(colExpiresAt).Lte(s.now().UTC()))

	return err
}

// HasCookies reports whether at least one unexpired cookie is stored.
func (s *CookieStore) HasCookies(ctx context.Context) (bool, error) {
	sqlQuery, _, err := goqu.Dialect(dialectPostgres).
		From(s.tableName).
		Select(goqu.L("1")).
		Where(unexpired(s.now())).
		Limit(1).
		ToSQL()
	if err != nil {
		return false, s.buildFailed(err)
	}

	rows, err := s.query(ctx, sqlQuery)
	if err != nil {
		return false, err
	}
	defer s.closeRows(rows)

	found := rows.Next()
	if err = rows.Err(); err != nil {
		return false, errors.Join(ErrQueryingCookiesFailed, err)
	}

	return found, nil
}

// Flush returns ctx.Err(): every statement commits on its own, so nothing is pending.
func (s *CookieStore) Flush(ctx context.Context) error {
	return ctx.Err()
}

func (s *CookieStore) buildUpsertQuery(entry cookiestore.Entry) (string, error) {
	var expiresAt any
	if !entry.Session() {
		expiresAt = entry.Expires.UTC()
	}

	sqlQuery, _, err := goqu.Dialect(dialectPostgres).
		Insert(s.tableName).
		Rows(goqu.Record{
			colDomain:    entry.Domain,
			colPath:      entry.Path,
			colName:      entry.Name,
			colValue:     entry.Value,
			colHostOnly:  entry.HostOnly,
			colSecure:    entry.Secure,
			colHTTPOnly:  entry.HTTPOnly,
			colExpiresAt: expiresAt,
			colCreatedAt: entry.CreatedAt.UTC(),
		}).
		OnConflict(goqu.DoUpdate(conflictTarget, goqu.Record{
			colValue:     goqu.L("EXCLUDED." + colValue),
			colHostOnly:  goqu.L("EXCLUDED." + colHostOnly),
			colSecure:    goqu.L("EXCLUDED." + colSecure),
			colHTTPOnly:  goqu.L("EXCLUDED." + colHTTPOnly),
			colExpiresAt: goqu.L("EXCLUDED." + colExpiresAt),
		})).
		ToSQL()
	if err != nil {
		return "", s.buildFailed(err)
	}

	return sqlQuery, nil
}

func (s *CookieStore) buildDeleteEntryQuery(entry cookiestore.Entry) (string, error) {
	sqlQuery, _, err := goqu.Dialect(dialectPostgres).
		Delete(s.tableName).
		Where(goqu.Ex{colDomain: entry.Domain, colPath: entry.Path, colName: entry.Name}).
		ToSQL()
	if err != nil {
		return "", s.buildFailed(err)
	}

	return sqlQuery, nil
}

func (s *CookieStore) buildSelectQuery(hosts []string, now time.Time) (string, error) {
	sqlQuery, _, err := goqu.Dialect(dialectPostgres).
		From(s.tableName).
		Select(colName, colValue, colDomain, colHostOnly, colPath, colSecure, colHTTPOnly, colExpiresAt, colCreatedAt).
		Where(goqu.C(colDomain).In(hosts), unexpired(now)).
		Order(goqu.I(colName).Asc()).
		ToSQL()
	if err != nil {
		return "", s.buildFailed(err)
	}

	return sqlQuery, nil
}

func (s *CookieStore) deleteWhere(ctx context.Context, conditions ...goqu.Expression) (int64, error) {
	sqlQuery, _, err := goqu.Dialect(dialectPostgres).
		Delete(s.tableName).
		Where(conditions...).
		ToSQL()
	if err != nil {
		return 0, s.buildFailed(err)
	}

	return s.exec(ctx, sqlQuery, logActionDelete)
}

func unexpired(now time.Time) goqu.Expression {
	return goqu.Or(
		goqu.C(colExpiresAt).IsNull(),
		goqu.C(colExpiresAt).Gt(now.UTC()),
	)
}

func (s *CookieStore) queryEntries(ctx context.Context, sqlQuery string) ([]cookiestore.Entry, error) {
	rows, err := s.query(ctx, sqlQuery)
	if err != nil {
		return nil, err
	}
	defer s.closeRows(rows)

	var entries []cookiestore.Entry

	for rows.Next() {
		var entry cookiestore.Entry
		var expiresAt sql.NullTime

		if err = rows.Scan(
			&entry.Name,
			&entry.Value,
			&entry.Domain,
			&entry.HostOnly,
			&entry.Path,
			&entry.Secure,
			&entry.HTTPOnly,
			&expiresAt,
			&entry.CreatedAt,
		); err != nil {
			return nil, errors.Join(ErrScanningRowFailed, err)
		}

		if expiresAt.Valid {
			entry.Expires = expiresAt.Time
		}

		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Join(ErrQueryingCookiesFailed, err)
	}

	return entries, nil
}

func (s *CookieStore) query(ctx context.Context, sqlQuery string) (adapters.DBRows, error) {
	start := time.Now()
	rows, err := s.db.Query(ctx, sqlQuery)
	s.logQueryWithDuration(sqlQuery, logActionSelect, time.Since(start))

	if err != nil {
		if s.logger != nil {
			s.logger.Error(logMsgDBQueryFailed, logAttrError, err.Error(), logAttrQuery, sqlQuery)
		}

		return nil, errors.Join(ErrQueryingCookiesFailed, err)
	}

	return rows, nil
}

func (s *CookieStore) exec(ctx context.Context, sqlQuery, action string) (int64, error) {
	start := time.Now()
	result, err := s.db.Exec(ctx, sqlQuery)
	s.logQueryWithDuration(sqlQuery, action, time.Since(start))

	if err != nil {
		if s.logger != nil {
			s.logger.Error(logMsgDBExecFailed, logAttrError, err.Error(), logAttrQuery, sqlQuery)
		}

		return 0, errors.Join(ErrWritingCookiesFailed, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		if s.logger != nil {
			s.logger.Warn(logMsgRowsAffectedFailed, logAttrError, err.Error())
		}

		return 0, nil
	}

	return rowsAffected, nil
}

func (s *CookieStore) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		if s.logger != nil {
			s.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
		}
	}
}

func (s *CookieStore) buildFailed(err error) error {
	if s.logger != nil {
		s.logger.Error(logMsgBuildQueryFailed, logAttrError, err.Error())
	}

	return errors.Join(ErrBuildingQueryFailed, err)
}

func (s *CookieStore) logQueryWithDuration(sqlQuery, action string, duration time.Duration) {
	if s.logger != nil {
		s.logger.Debug(
			logMsgSQLExecuted+action,
			logAttrQuery, sqlQuery,
			logAttrDurationMS, durationToMilliseconds(duration),
		)
	}
}

func durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

var _ cookiehook.CookieService = (*CookieStore)(nil)
