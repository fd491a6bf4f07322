package db

import (
	"strings"
)

// InferDBType attempts to infer the database type from a connection string.
// Returns the detected type or empty string if unable to infer.
func InferDBType(connString string) string {
	conn := strings.TrimSpace(connString)

	switch {
	case strings.HasPrefix(conn, "postgres://"), strings.HasPrefix(conn, "postgresql://"):
		return "postgres"
	case strings.HasPrefix(conn, "mysql://"), strings.HasPrefix(conn, "mariadb://"):
		return "mysql"
	case strings.HasPrefix(conn, "sqlserver://"), strings.HasPrefix(conn, "mssql://"):
		return "sqlserver"
	case strings.HasPrefix(conn, "oracle://"):
		return "oracle"
	case strings.HasPrefix(conn, "file://"), conn == ":memory:":
		return "sqlite"
	}

	// Easy Connect strings: user/pass@host:port/service
	if strings.Contains(conn, "@") && strings.Contains(conn, "/") && !strings.Contains(conn, "://") &&
		strings.Index(conn, "/") < strings.Index(conn, "@") {
		return "oracle"
	}

	if strings.HasSuffix(conn, ".db") ||
		strings.HasSuffix(conn, ".sqlite") ||
		strings.HasSuffix(conn, ".sqlite3") {
		return "sqlite"
	}

	return ""
}

// GetSupportedDBTypes returns a list of all supported database types.
func GetSupportedDBTypes() []string {
	return []string{
		"oracle",
		"sqlserver",
		"postgres",
		"pgx",
		"mysql",
		"sqlite3",
		"sqlite",
	}
}
