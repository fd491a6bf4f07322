package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

func NewOracleConnector(connString string, maxOpen int) (*BaseConnector, error) {
	return newBaseConnector("oracle", "godror", connString, OracleDialect{}, maxOpen)
}

// OracleDialect calls procedures inside an anonymous PL/SQL block using named
// notation, so argument order never matters. Reader calls expect a pipelined
// table function, scalar calls a plain function.
type OracleDialect struct{}

func (OracleDialect) Name() string { return "oracle" }

func (OracleDialect) Call(kind CallKind, proc string, params []*Param) (Statement, error) {
	if err := validateCall(proc, params); err != nil {
		return Statement{}, err
	}

	var (
		assoc []string
		args  []any
		dests = make(map[*Param]any)
		ret   *Param
	)
	for _, p := range params {
		switch p.Direction {
		case DirReturn:
			ret = p
			continue
		case DirIn:
			args = append(args, sql.Named(p.Name, p.Value))
		default:
			if kind != CallNonQuery {
				return Statement{}, fmt.Errorf("%s: %s parameter %s only allowed on non-query calls", proc, p.Direction, p.Name)
			}
			dest := outDest(p)
			dests[p] = dest
			args = append(args, sql.Named(p.Name, sql.Out{Dest: dest, In: p.Direction == DirInOut}))
		}
		assoc = append(assoc, fmt.Sprintf("%s => :%s", p.Name, p.Name))
	}
	call := fmt.Sprintf("%s(%s)", proc, strings.Join(assoc, ", "))

	stmt := Statement{Args: args}
	switch kind {
	case CallReader:
		stmt.SQL = fmt.Sprintf("SELECT * FROM TABLE(%s)", call)
	case CallScalar:
		stmt.SQL = fmt.Sprintf("SELECT %s FROM DUAL", call)
	default:
		if ret != nil {
			dest := outDest(ret)
			dests[ret] = dest
			stmt.Args = append(stmt.Args, sql.Named(ret.Name, sql.Out{Dest: dest}))
			stmt.SQL = fmt.Sprintf("BEGIN :%s := %s; END;", ret.Name, call)
		} else {
			stmt.SQL = fmt.Sprintf("BEGIN %s; END;", call)
		}
	}

	if len(dests) > 0 {
		stmt.Collect = func(context.Context, Connection, []Value) error {
			for p, dest := range dests {
				p.Value = derefDest(dest)
			}
			return nil
		}
	}
	return stmt, nil
}
