package db

import (
	"context"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

// NewPostgresConnector uses lib/pq; NewPgxConnector the pgx stdlib adapter.
// Both speak the same dialect.
func NewPostgresConnector(connString string, maxOpen int) (*BaseConnector, error) {
	return newBaseConnector("postgres", "postgres", connString, PostgresDialect{}, maxOpen)
}

func NewPgxConnector(connString string, maxOpen int) (*BaseConnector, error) {
	return newBaseConnector("pgx", "pgx", connString, PostgresDialect{}, maxOpen)
}

// PostgresDialect uses named notation (name => $n). Procedures report OUT and
// INOUT parameters as the single row returned by CALL; a return value comes
// from calling the routine as a function.
type PostgresDialect struct{}

func (PostgresDialect) Name() string { return "postgres" }

func (PostgresDialect) Call(kind CallKind, proc string, params []*Param) (Statement, error) {
	if err := validateCall(proc, params); err != nil {
		return Statement{}, err
	}

	var (
		assoc []string
		args  []any
		ret   *Param
	)
	for _, p := range params {
		switch p.Direction {
		case DirReturn:
			ret = p
			continue
		case DirOut:
			if kind != CallNonQuery {
				return Statement{}, fmt.Errorf("%s: out parameter %s only allowed on non-query calls", proc, p.Name)
			}
			assoc = append(assoc, fmt.Sprintf("%s => NULL", p.Name))
			continue
		}
		args = append(args, p.Value)
		assoc = append(assoc, fmt.Sprintf("%s => %s", p.Name, placeholderDollar(len(args))))
	}
	call := fmt.Sprintf("%s(%s)", proc, strings.Join(assoc, ", "))

	switch kind {
	case CallReader, CallScalar:
		return Statement{SQL: "SELECT * FROM " + call, Args: args}, nil
	}

	if ret != nil {
		return Statement{
			SQL:       "SELECT " + call,
			Args:      args,
			OutputRow: true,
			Collect:   assignOutputRow([]*Param{ret}),
		}, nil
	}

	outs := outputParams(params)
	stmt := Statement{SQL: "CALL " + call, Args: args}
	if len(outs) > 0 {
		stmt.OutputRow = true
		stmt.Collect = assignOutputRow(outs)
	}
	return stmt, nil
}

func assignOutputRow(outs []*Param) func(context.Context, Connection, []Value) error {
	return func(_ context.Context, _ Connection, row []Value) error {
		if len(row) < len(outs) {
			return fmt.Errorf("expected %d output values, got %d", len(outs), len(row))
		}
		for i, p := range outs {
			p.Value = row[i].Raw
		}
		return nil
	}
}
