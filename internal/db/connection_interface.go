package db

import (
	"context"
	"database/sql"
	"reflect"
)

// Connection is a single, call-scoped database connection. It starts closed;
// the Store opens it, runs one stored procedure on it and closes it.
type Connection interface {
	Open(ctx context.Context) error
	IsOpen() bool
	QueryContext(ctx context.Context, query string, args ...any) (Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Close() error
}

// Rows is the subset of *sql.Rows the Store reads results through.
type Rows interface {
	Columns() ([]string, error)
	ColumnTypes() ([]ColumnType, error)
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// ColumnType is satisfied by *sql.ColumnType.
type ColumnType interface {
	Name() string
	DatabaseTypeName() string
	ScanType() reflect.Type
}

// Connector hands out fresh connections and knows how its engine spells a
// stored-procedure call.
type Connector interface {
	Connect() Connection
	Dialect() Dialect
	Ping(ctx context.Context) error
	Close() error

	GetDbType() string
}
