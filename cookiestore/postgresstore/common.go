package postgresstore

import "errors"

var ErrNilDatabaseConnection = errors.New("nil database connection supplied")
var ErrEmptyTableName = errors.New("cookie table name must not be empty")
var ErrInvalidTableName = errors.New("cookie table name is not a plain identifier")

var ErrBuildingQueryFailed = errors.New("building query failed")
var ErrQueryingCookiesFailed = errors.New("querying cookies failed")
var ErrScanningRowFailed = errors.New("scanning cookie row failed")
var ErrWritingCookiesFailed = errors.New("writing cookies failed")
var ErrCreatingSchemaFailed = errors.New("creating cookie table failed")
