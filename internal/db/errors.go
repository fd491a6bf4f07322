package db

import "errors"

var (
	// ErrQueryFailed wraps every database fault the Store reports. It is what
	// separates a failed call from one that legitimately returned no rows.
	ErrQueryFailed = errors.New("query failed")

	// ErrNotOpen is returned when a statement runs on a connection whose open failed.
	ErrNotOpen = errors.New("connection is not open")

	// ErrUnsupportedDBType is returned by CreateConnector for unknown engines.
	ErrUnsupportedDBType = errors.New("unsupported database type")

	// ErrNoProcedure is returned by the SQLite catalogue for unknown procedure names.
	ErrNoProcedure = errors.New("procedure not found")

	// ErrNoOutputColumn is returned by the SQLite catalogue when an output
	// parameter has no matching column in the procedure body.
	ErrNoOutputColumn = errors.New("no column for output parameter")

	// ErrStatusParam means the status parameter is missing or not an integer.
	ErrStatusParam = errors.New("status parameter is not an integer")
)
