// Package db is the data-access layer: every call runs one stored procedure on
// its own connection and hands back generic rows rather than domain types.
package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Store executes stored procedures through a Connector. It holds no state
// between calls besides the connector itself and is safe for concurrent use.
type Store struct {
	connector Connector
	logger    *zap.Logger
}

func NewStore(connector Connector, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		connector: connector,
		logger:    logger.Named("db"),
	}
}

// NonQueryResult carries both success signals a procedure can give, so the
// caller decides which one its procedure contract uses.
type NonQueryResult struct {
	RowsAffected   int64
	Params         []Param
	ReturnValue    string
	HasReturnValue bool
}

// Status parses the first bound parameter, where procedures report their status.
func (r NonQueryResult) Status() (int, error) {
	if len(r.Params) == 0 {
		return 0, fmt.Errorf("%w: no parameters bound", ErrStatusParam)
	}
	text := strings.TrimSpace(r.Params[0].Text())
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrStatusParam, r.Params[0].Name, text)
	}
	return n, nil
}

// StatusOK reports whether the first bound parameter is a non-negative integer.
func (r NonQueryResult) StatusOK() bool {
	n, err := r.Status()
	return err == nil && n >= 0
}

// Affected reports whether the driver returned a non-negative rows-affected count.
func (r NonQueryResult) Affected() bool {
	return r.RowsAffected >= 0
}

// ExecuteReader returns every row in ordered, string-encoded form. Zero rows
// gives an empty slice and a nil error; any database fault gives an error
// wrapping ErrQueryFailed.
func (s *Store) ExecuteReader(ctx context.Context, proc string, params ...Param) ([]Row, error) {
	rs, err := s.Query(ctx, proc, params...)
	if err != nil {
		return nil, err
	}
	return rs.Strings(), nil
}

// ExecuteReaderDict returns rows keyed by column name without type-aware
// NULL coercion; a NULL reads as "".
func (s *Store) ExecuteReaderDict(ctx context.Context, proc string, params ...Param) ([]Record, error) {
	rs, err := s.Query(ctx, proc, params...)
	if err != nil {
		return nil, err
	}
	return rs.Dicts(), nil
}

// Query returns the typed result set with NULLs left intact.
func (s *Store) Query(ctx context.Context, proc string, params ...Param) (*ResultSet, error) {
	bound := bindParams(params)

	var rs *ResultSet
	err := s.withConnection(ctx, proc, func(conn Connection) error {
		stmt, err := s.prepare(ctx, conn, CallReader, proc, bound)
		if err != nil {
			return err
		}

		rs, err = queryResultSet(ctx, conn, stmt)
		if err != nil {
			return err
		}
		if stmt.Collect != nil {
			return stmt.Collect(ctx, conn, nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rs, nil
}

// ExecuteNonQuery runs a procedure that returns no rows and reports success
// from its status convention: the first bound parameter must hold a
// non-negative integer after the call. A status that is not an integer yields
// false and an error wrapping ErrStatusParam.
func (s *Store) ExecuteNonQuery(ctx context.Context, proc string, params ...Param) (bool, error) {
	res, err := s.ExecuteNonQueryResult(ctx, proc, params...)
	if err != nil {
		return false, err
	}
	n, err := res.Status()
	if err != nil {
		s.logger.Warn("Unreadable status parameter", zap.String("procedure", proc), zap.Error(err))
		return false, err
	}
	return n >= 0, nil
}

// ExecuteNonQueryReturn runs a procedure and returns the value of its
// DirReturn parameter ("" when none is bound). Success here means the driver
// reported a non-negative rows-affected count; the status parameter is not
// consulted.
func (s *Store) ExecuteNonQueryReturn(ctx context.Context, proc string, params ...Param) (string, bool, error) {
	res, err := s.ExecuteNonQueryResult(ctx, proc, params...)
	if err != nil {
		return "", false, err
	}
	return res.ReturnValue, res.Affected(), nil
}

func (s *Store) ExecuteNonQueryResult(ctx context.Context, proc string, params ...Param) (NonQueryResult, error) {
	bound := bindParams(params)

	var affected int64
	err := s.withConnection(ctx, proc, func(conn Connection) error {
		stmt, err := s.prepare(ctx, conn, CallNonQuery, proc, bound)
		if err != nil {
			return err
		}

		var outputRow []Value
		if stmt.OutputRow {
			rs, err := queryResultSet(ctx, conn, stmt)
			if err != nil {
				return err
			}
			if len(rs.Rows) > 0 {
				outputRow = rs.Rows[0]
			}
		} else {
			res, err := conn.ExecContext(ctx, stmt.SQL, stmt.Args...)
			if err != nil {
				return err
			}
			// drivers that cannot count rows for procedure calls report 0
			if n, err := res.RowsAffected(); err == nil {
				affected = n
			}
		}

		if stmt.Collect != nil {
			return stmt.Collect(ctx, conn, outputRow)
		}
		return nil
	})
	if err != nil {
		return NonQueryResult{RowsAffected: -1, Params: unbindParams(bound)}, err
	}

	res := NonQueryResult{RowsAffected: affected, Params: unbindParams(bound)}
	if ret := returnParam(bound); ret != nil {
		res.ReturnValue = ret.Text()
		res.HasReturnValue = true
	}
	return res, nil
}

// ExecuteScalar returns the first column of the first row as the driver
// produced it. No rows gives nil with a nil error.
func (s *Store) ExecuteScalar(ctx context.Context, proc string, params ...Param) (any, error) {
	bound := bindParams(params)

	var result any
	err := s.withConnection(ctx, proc, func(conn Connection) error {
		stmt, err := s.prepare(ctx, conn, CallScalar, proc, bound)
		if err != nil {
			return err
		}

		rs, err := queryResultSet(ctx, conn, stmt)
		if err != nil {
			return err
		}
		if len(rs.Rows) > 0 && len(rs.Rows[0]) > 0 {
			result = rs.Rows[0][0].Raw
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.connector.Ping(ctx)
}

func (s *Store) Close() error {
	return s.connector.Close()
}

// withConnection is the single place a connection is acquired. The connection
// is closed exactly once on every path, including a failed open and a panic
// inside fn; open failures are logged and execution is still attempted.
func (s *Store) withConnection(ctx context.Context, proc string, fn func(conn Connection) error) (err error) {
	start := time.Now()
	conn := s.connector.Connect()
	defer s.release(proc, conn)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			s.logger.Error("Procedure panicked", zap.String("procedure", proc), zap.Error(err))
			err = errors.Join(ErrQueryFailed, err)
		}
	}()

	if !conn.IsOpen() {
		if openErr := conn.Open(ctx); openErr != nil {
			s.logger.Warn("Opening connection failed", zap.String("procedure", proc), zap.Error(openErr))
		}
	}

	if err := fn(conn); err != nil {
		s.logger.Error("Procedure failed", zap.String("procedure", proc), zap.Error(err))
		return errors.Join(ErrQueryFailed, err)
	}

	s.logger.Debug("Procedure executed", zap.String("procedure", proc), zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (s *Store) release(proc string, conn Connection) {
	if err := conn.Close(); err != nil {
		s.logger.Warn("Closing connection failed", zap.String("procedure", proc), zap.Error(err))
	}
}

func (s *Store) prepare(ctx context.Context, conn Connection, kind CallKind, proc string, bound []*Param) (Statement, error) {
	stmt, err := s.connector.Dialect().Call(kind, proc, bound)
	if err != nil {
		return Statement{}, err
	}
	for _, before := range stmt.Before {
		if _, err := conn.ExecContext(ctx, before.SQL, before.Args...); err != nil {
			return Statement{}, fmt.Errorf("preparing call: %w", err)
		}
	}
	return stmt, nil
}

func queryResultSet(ctx context.Context, conn Connection, stmt Statement) (*ResultSet, error) {
	rows, err := conn.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return readResultSet(rows)
}
