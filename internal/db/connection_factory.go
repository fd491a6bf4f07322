package db

import (
	"fmt"
	"strings"
)

type Options struct {
	MaxOpenConns int
	// Procedures is the SQLite stand-in for stored procedures.
	Procedures map[string]string
}

func CreateConnector(dbType, connString string, opts Options) (*BaseConnector, error) {
	if dbType == "" {
		dbType = InferDBType(connString)
	}

	switch strings.ToLower(dbType) {
	case "oracle", "godror":
		return NewOracleConnector(connString, opts.MaxOpenConns)
	case "sqlserver", "mssql":
		return NewSqlServerConnector(connString, opts.MaxOpenConns)
	case "postgres", "postgresql":
		return NewPostgresConnector(connString, opts.MaxOpenConns)
	case "pgx":
		return NewPgxConnector(connString, opts.MaxOpenConns)
	case "mysql", "mariadb":
		return NewMySQLConnector(connString, opts.MaxOpenConns)
	case "sqlite3":
		return NewSQLiteConnector("sqlite3", strings.TrimPrefix(connString, "file://"), opts.Procedures)
	case "sqlite":
		return NewSQLiteConnector("sqlite", strings.TrimPrefix(connString, "file://"), opts.Procedures)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDBType, dbType)
	}
}
