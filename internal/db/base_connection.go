package db

import (
	"context"
	"database/sql"
	"fmt"
)

// BaseConnector is the database/sql backed Connector shared by every engine.
// The pool inside *sql.DB belongs to the driver; each call still gets its own
// dedicated *sql.Conn, which MySQL session variables rely on.
type BaseConnector struct {
	DbType     string
	ConnString string

	db      *sql.DB
	dialect Dialect
}

func newBaseConnector(dbType, driverName, connString string, dialect Dialect, maxOpen int) (*BaseConnector, error) {
	db, err := sql.Open(driverName, connString)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbType, err)
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	return &BaseConnector{
		DbType:     dbType,
		ConnString: connString,
		db:         db,
		dialect:    dialect,
	}, nil
}

func (b *BaseConnector) Connect() Connection {
	return &sqlConnection{db: b.db}
}

func (b *BaseConnector) Dialect() Dialect  { return b.dialect }
func (b *BaseConnector) GetDbType() string { return b.DbType }

func (b *BaseConnector) Ping(ctx context.Context) error {
	if b.db == nil {
		return fmt.Errorf("database is not open")
	}
	return b.db.PingContext(ctx)
}

func (b *BaseConnector) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

// GetDB exposes the underlying handle for maintenance tasks such as seeding
// the SQLite catalogue schema.
func (b *BaseConnector) GetDB() *sql.DB {
	return b.db
}

type sqlConnection struct {
	db   *sql.DB
	conn *sql.Conn
}

func (c *sqlConnection) Open(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return err
	}
	c.conn = conn
	return nil
}

func (c *sqlConnection) IsOpen() bool {
	return c.conn != nil
}

func (c *sqlConnection) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	if c.conn == nil {
		return nil, ErrNotOpen
	}
	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &sqlRows{Rows: rows}, nil
}

func (c *sqlConnection) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if c.conn == nil {
		return nil, ErrNotOpen
	}
	return c.conn.ExecContext(ctx, query, args...)
}

// Close releases the dedicated connection back to database/sql. Calling it on
// a connection that never opened is a no-op.
func (c *sqlConnection) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

type sqlRows struct {
	*sql.Rows
}

func (r *sqlRows) ColumnTypes() ([]ColumnType, error) {
	cts, err := r.Rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	out := make([]ColumnType, len(cts))
	for i, ct := range cts {
		out[i] = ct
	}
	return out, nil
}
