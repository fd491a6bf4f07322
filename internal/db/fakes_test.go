package db

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
)

type fakeColumn struct {
	name     string
	dbType   string
	scanType reflect.Type
}

func (c fakeColumn) Name() string             { return c.name }
func (c fakeColumn) DatabaseTypeName() string { return c.dbType }
func (c fakeColumn) ScanType() reflect.Type   { return c.scanType }

type fakeRows struct {
	columns []fakeColumn
	data    [][]any
	idx     int
	err     error
	closed  bool
}

func (r *fakeRows) Columns() ([]string, error) {
	names := make([]string, len(r.columns))
	for i, c := range r.columns {
		names[i] = c.name
	}
	return names, nil
}

func (r *fakeRows) ColumnTypes() ([]ColumnType, error) {
	out := make([]ColumnType, len(r.columns))
	for i, c := range r.columns {
		out[i] = c
	}
	return out, nil
}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.idx-1]
	if len(dest) != len(row) {
		return errors.New("scan: column count mismatch")
	}
	for i, d := range dest {
		*(d.(*any)) = row[i]
	}
	return nil
}

func (r *fakeRows) Err() error   { return r.err }
func (r *fakeRows) Close() error { r.closed = true; return nil }

type fakeResult struct {
	affected int64
	err      error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, errors.New("not supported") }
func (r fakeResult) RowsAffected() (int64, error) { return r.affected, r.err }

type fakeConnector struct {
	dialect  Dialect
	openErr  error
	closeErr error
	query    func(query string, args []any) (Rows, error)
	exec     func(query string, args []any) (sql.Result, error)

	conns []*fakeConn
}

func (f *fakeConnector) Connect() Connection {
	c := &fakeConn{parent: f}
	f.conns = append(f.conns, c)
	return c
}

func (f *fakeConnector) Dialect() Dialect               { return f.dialect }
func (f *fakeConnector) Ping(ctx context.Context) error { return nil }
func (f *fakeConnector) Close() error                   { return nil }
func (f *fakeConnector) GetDbType() string              { return "fake" }

type fakeConn struct {
	parent   *fakeConnector
	open     bool
	closes   int
	executed []string
}

func (c *fakeConn) Open(ctx context.Context) error {
	if c.parent.openErr != nil {
		return c.parent.openErr
	}
	c.open = true
	return nil
}

func (c *fakeConn) IsOpen() bool { return c.open }

func (c *fakeConn) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	if !c.open {
		return nil, ErrNotOpen
	}
	c.executed = append(c.executed, query)
	if c.parent.query == nil {
		return &fakeRows{}, nil
	}
	return c.parent.query(query, args)
}

func (c *fakeConn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if !c.open {
		return nil, ErrNotOpen
	}
	c.executed = append(c.executed, query)
	if c.parent.exec == nil {
		return fakeResult{}, nil
	}
	return c.parent.exec(query, args)
}

func (c *fakeConn) Close() error {
	c.closes++
	c.open = false
	return c.parent.closeErr
}

// stubDialect passes the procedure name through as SQL and writes outputs
// back by parameter name.
type stubDialect struct {
	err      error
	panicMsg string
	outputs  map[string]any
}

func (stubDialect) Name() string { return "stub" }

func (d stubDialect) Call(kind CallKind, proc string, params []*Param) (Statement, error) {
	if d.panicMsg != "" {
		panic(d.panicMsg)
	}
	if d.err != nil {
		return Statement{}, d.err
	}

	stmt := Statement{SQL: proc}
	for _, p := range params {
		if p.Direction == DirIn || p.Direction == DirInOut {
			stmt.Args = append(stmt.Args, p.Value)
		}
	}
	if len(d.outputs) > 0 {
		stmt.Collect = func(context.Context, Connection, []Value) error {
			for _, p := range params {
				if v, ok := d.outputs[p.Name]; ok {
					p.Value = v
				}
			}
			return nil
		}
	}
	return stmt, nil
}
