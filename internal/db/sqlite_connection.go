package db

import (
	"database/sql"
	"fmt"
	"regexp"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// NewSQLiteConnector opens SQLite through mattn/go-sqlite3 ("sqlite3") or the
// cgo-free modernc driver ("sqlite"). SQLite has no stored procedures, so the
// procedures map stands in for them.
func NewSQLiteConnector(driverName, connString string, procedures map[string]string) (*BaseConnector, error) {
	c, err := newBaseConnector(driverName, driverName, connString, SQLiteDialect{Procedures: procedures}, 0)
	if err != nil {
		return nil, err
	}
	if connString == ":memory:" {
		// every new connection to :memory: is a separate database
		c.db.SetMaxOpenConns(1)
	}
	return c, nil
}

// SQLiteDialect resolves procedure names against a catalogue of SQL bodies
// that use :name placeholders. Output and return parameters are read from the
// row the body returns (INSERT ... RETURNING 0 AS p_status), in the order they
// are bound; each needs a column alias of the same name in the body.
type SQLiteDialect struct {
	Procedures map[string]string
}

func (SQLiteDialect) Name() string { return "sqlite" }

func (d SQLiteDialect) Call(kind CallKind, proc string, params []*Param) (Statement, error) {
	if err := validateCall(proc, params); err != nil {
		return Statement{}, err
	}
	body, ok := d.Procedures[proc]
	if !ok {
		return Statement{}, fmt.Errorf("%w: %s", ErrNoProcedure, proc)
	}

	// only placeholders present in the body are bound; the drivers reject
	// named arguments the statement does not declare
	var args []any
	for _, p := range params {
		if p.Direction != DirIn && p.Direction != DirInOut {
			continue
		}
		if referencesParam(body, p.Name) {
			args = append(args, sql.Named(p.Name, p.Value))
		}
	}
	stmt := Statement{SQL: body, Args: args}

	var outs []*Param
	for _, p := range params {
		if p.Direction.IsOutput() {
			outs = append(outs, p)
		}
	}
	if len(outs) == 0 {
		return stmt, nil
	}
	if kind != CallNonQuery {
		return Statement{}, fmt.Errorf("%s: output parameters only allowed on non-query calls", proc)
	}
	for _, p := range outs {
		if !declaresColumn(body, p.Name) {
			return Statement{}, fmt.Errorf("%w: %s has no column aliased %s", ErrNoOutputColumn, proc, p.Name)
		}
	}
	stmt.OutputRow = true
	stmt.Collect = assignOutputRow(outs)
	return stmt, nil
}

func declaresColumn(body, name string) bool {
	re := regexp.MustCompile(`(?i)\bAS\s+"?` + regexp.QuoteMeta(name) + `"?(\W|$)`)
	return re.MatchString(body)
}

func referencesParam(body, name string) bool {
	re := regexp.MustCompile(`:` + regexp.QuoteMeta(name) + `\b`)
	return re.MatchString(body)
}
