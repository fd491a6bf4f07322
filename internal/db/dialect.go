package db

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
)

// CallKind selects the shape of the generated call.
type CallKind int

const (
	CallReader CallKind = iota
	CallNonQuery
	CallScalar
)

// Statement is one stored-procedure invocation translated for a specific engine.
type Statement struct {
	SQL  string
	Args []any

	// Before runs on the same connection ahead of SQL. MySQL uses it to seed
	// session variables for INOUT parameters.
	Before []Statement

	// OutputRow marks calls whose output parameters come back as the single row
	// of a result set (PostgreSQL CALL and scalar functions).
	OutputRow bool

	// Collect copies the values written by the procedure back into the bound
	// parameters. It runs after the statement on the same connection; row is
	// the output row for OutputRow statements and nil otherwise.
	Collect func(ctx context.Context, conn Connection, row []Value) error
}

type Dialect interface {
	Name() string
	Call(kind CallKind, proc string, params []*Param) (Statement, error)
}

var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$#]*(\.[A-Za-z_][A-Za-z0-9_$#]*)*$`)

func validateCall(proc string, params []*Param) error {
	if !identifierRegex.MatchString(proc) {
		return fmt.Errorf("invalid procedure name %q", proc)
	}
	for _, p := range params {
		if !identifierRegex.MatchString(p.Name) {
			return fmt.Errorf("invalid parameter name %q for %s", p.Name, proc)
		}
	}
	return nil
}

// outputParams lists the parameters a procedure writes, excluding the return
// value, in declaration order.
func outputParams(params []*Param) []*Param {
	var outs []*Param
	for _, p := range params {
		if p.Direction == DirOut || p.Direction == DirInOut {
			outs = append(outs, p)
		}
	}
	return outs
}

// outDest allocates a typed destination for an output parameter. Drivers bind
// OUT parameters by the Go type of the destination, so integers stay integers.
func outDest(p *Param) any {
	switch v := p.Value.(type) {
	case int:
		n := int64(v)
		return &n
	case int32:
		n := int64(v)
		return &n
	case int64:
		n := v
		return &n
	case float64:
		f := v
		return &f
	case bool:
		b := v
		return &b
	case string:
		s := v
		return &s
	default:
		s := ""
		return &s
	}
}

func derefDest(dest any) any {
	switch d := dest.(type) {
	case *int64:
		return *d
	case *float64:
		return *d
	case *bool:
		return *d
	case *string:
		return *d
	default:
		return dest
	}
}

func placeholderDollar(i int) string {
	return "$" + strconv.Itoa(i)
}
