package db

import "fmt"

// Direction tells a dialect how a parameter is bound to a stored procedure.
type Direction int

const (
	DirIn Direction = iota
	DirOut
	DirInOut
	DirReturn
)

func (d Direction) String() string {
	switch d {
	case DirIn:
		return "in"
	case DirOut:
		return "out"
	case DirInOut:
		return "inout"
	case DirReturn:
		return "return"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// IsOutput reports whether the procedure writes a value back into the parameter.
func (d Direction) IsOutput() bool {
	return d != DirIn
}

// Param is a named stored-procedure argument. Binding is by name, so the order
// of a parameter list only matters for engines without named notation (MySQL)
// and for the status convention of ExecuteNonQuery, which reads the first one.
type Param struct {
	Name      string
	Direction Direction
	Value     any
}

func In(name string, value any) Param {
	return Param{Name: name, Direction: DirIn, Value: value}
}

func Out(name string) Param {
	return Param{Name: name, Direction: DirOut}
}

func InOut(name string, value any) Param {
	return Param{Name: name, Direction: DirInOut, Value: value}
}

// Return declares the parameter that receives a function's return value.
func Return(name string) Param {
	return Param{Name: name, Direction: DirReturn}
}

// Text renders the parameter value the way the status and return-value checks
// read it.
func (p Param) Text() string {
	return Value{Raw: p.Value}.String()
}

func bindParams(params []Param) []*Param {
	bound := make([]*Param, len(params))
	for i := range params {
		p := params[i]
		bound[i] = &p
	}
	return bound
}

func unbindParams(bound []*Param) []Param {
	params := make([]Param, len(bound))
	for i, p := range bound {
		params[i] = *p
	}
	return params
}

func returnParam(bound []*Param) *Param {
	for _, p := range bound {
		if p.Direction == DirReturn {
			return p
		}
	}
	return nil
}
