package db

import (
	"context"
	"database/sql"
	"fmt"

	mssql "github.com/microsoft/go-mssqldb"
)

func NewSqlServerConnector(connString string, maxOpen int) (*BaseConnector, error) {
	return newBaseConnector("sqlserver", "sqlserver", connString, SqlServerDialect{}, maxOpen)
}

// SqlServerDialect relies on go-mssqldb running a single-word query as an RPC
// stored-procedure call with named arguments.
type SqlServerDialect struct{}

func (SqlServerDialect) Name() string { return "sqlserver" }

func (SqlServerDialect) Call(kind CallKind, proc string, params []*Param) (Statement, error) {
	if err := validateCall(proc, params); err != nil {
		return Statement{}, err
	}

	var (
		args   []any
		dests  = make(map[*Param]any)
		ret    *Param
		status mssql.ReturnStatus
	)
	for _, p := range params {
		switch p.Direction {
		case DirReturn:
			ret = p
		case DirIn:
			args = append(args, sql.Named(p.Name, p.Value))
		default:
			dest := outDest(p)
			dests[p] = dest
			args = append(args, sql.Named(p.Name, sql.Out{Dest: dest, In: p.Direction == DirInOut}))
		}
	}
	if ret != nil {
		args = append(args, &status)
	}

	stmt := Statement{SQL: proc, Args: args}
	if len(dests) > 0 || ret != nil {
		stmt.Collect = func(context.Context, Connection, []Value) error {
			for p, dest := range dests {
				p.Value = derefDest(dest)
			}
			if ret != nil {
				ret.Value = int64(status)
			}
			return nil
		}
	}
	if kind == CallScalar && len(dests) > 0 {
		return Statement{}, fmt.Errorf("%s: output parameters are not read on scalar calls", proc)
	}
	return stmt, nil
}
