package db

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
)

func NewMySQLConnector(connString string, maxOpen int) (*BaseConnector, error) {
	dsn, err := mysqlDSN(connString)
	if err != nil {
		return nil, err
	}
	return newBaseConnector("mysql", "mysql", dsn, MySQLDialect{}, maxOpen)
}

// mysqlDSN turns mysql:// and mariadb:// URLs into the user:pass@tcp(host)/db
// form the driver parses. Other strings are passed through.
func mysqlDSN(connString string) (string, error) {
	if !strings.HasPrefix(connString, "mysql://") && !strings.HasPrefix(connString, "mariadb://") {
		return connString, nil
	}
	u, err := url.Parse(connString)
	if err != nil {
		return "", fmt.Errorf("parse mysql url: %w", err)
	}

	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	if u.Port() == "" {
		cfg.Addr = net.JoinHostPort(u.Hostname(), "3306")
	}
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
	}

	dsn := cfg.FormatDSN()
	if u.RawQuery != "" {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + u.RawQuery
	}
	if _, err := mysql.ParseDSN(dsn); err != nil {
		return "", fmt.Errorf("parse mysql url: %w", err)
	}
	return dsn, nil
}

// MySQLDialect has no named notation, so arguments are passed in the order the
// caller supplied them. OUT and INOUT parameters travel through session
// variables named after the parameter, which is why the Store pins every call
// to one dedicated connection.
type MySQLDialect struct{}

func (MySQLDialect) Name() string { return "mysql" }

func (MySQLDialect) Call(kind CallKind, proc string, params []*Param) (Statement, error) {
	if err := validateCall(proc, params); err != nil {
		return Statement{}, err
	}

	var (
		slots  []string
		args   []any
		before []Statement
		ret    *Param
	)
	for _, p := range params {
		switch p.Direction {
		case DirReturn:
			ret = p
		case DirIn:
			slots = append(slots, "?")
			args = append(args, p.Value)
		default:
			if kind != CallNonQuery {
				return Statement{}, fmt.Errorf("%s: %s parameter %s only allowed on non-query calls", proc, p.Direction, p.Name)
			}
			if p.Direction == DirInOut {
				before = append(before, Statement{SQL: fmt.Sprintf("SET @%s = ?", p.Name), Args: []any{p.Value}})
			}
			slots = append(slots, "@"+p.Name)
		}
	}
	call := fmt.Sprintf("%s(%s)", proc, strings.Join(slots, ", "))

	switch kind {
	case CallReader:
		return Statement{SQL: "CALL " + call, Args: args}, nil
	case CallScalar:
		return Statement{SQL: "SELECT " + call, Args: args}, nil
	}

	stmt := Statement{SQL: "CALL " + call, Args: args, Before: before}
	if ret != nil {
		stmt.SQL = fmt.Sprintf("SET @%s = %s", ret.Name, call)
	}

	outs := outputParams(params)
	if ret != nil {
		outs = append(outs, ret)
	}
	if len(outs) > 0 {
		vars := make([]string, len(outs))
		for i, p := range outs {
			vars[i] = "@" + p.Name
		}
		query := "SELECT " + strings.Join(vars, ", ")
		stmt.Collect = func(ctx context.Context, conn Connection, _ []Value) error {
			rows, err := conn.QueryContext(ctx, query)
			if err != nil {
				return fmt.Errorf("reading output variables: %w", err)
			}
			defer rows.Close()

			rs, err := readResultSet(rows)
			if err != nil {
				return err
			}
			if len(rs.Rows) == 0 {
				return fmt.Errorf("reading output variables: no row")
			}
			for i, p := range outs {
				p.Value = rs.Rows[0][i].Raw
			}
			return nil
		}
	}
	return stmt, nil
}
