package params

import (
	"fmt"
	"strings"

	"github.com/ict4events/eventsite/internal/db"
)

// Arg is a procedure argument as typed on the command line:
//
//	name=value          input
//	name:out            output
//	name:inout=value    input and output
//	name:return         return value
type Arg struct {
	Name      string
	Direction db.Direction
	Value     string
	HasValue  bool
}

// ParseArgs splits command-line tokens into named arguments and bare
// positional values.
func ParseArgs(tokens []string) ([]Arg, []string, error) {
	var (
		args        []Arg
		positionals []string
	)
	for _, tok := range tokens {
		eq := strings.IndexByte(tok, '=')
		colon := strings.IndexByte(tok, ':')
		if eq < 0 && colon < 0 {
			positionals = append(positionals, tok)
			continue
		}

		var arg Arg
		head := tok
		if eq >= 0 {
			head = tok[:eq]
			arg.Value = tok[eq+1:]
			arg.HasValue = true
		}

		name, dir, _ := strings.Cut(head, ":")
		arg.Name = name
		switch strings.ToLower(dir) {
		case "", "in":
			arg.Direction = db.DirIn
			if !arg.HasValue {
				return nil, nil, fmt.Errorf("argument %q needs a value", name)
			}
		case "out":
			arg.Direction = db.DirOut
		case "inout":
			arg.Direction = db.DirInOut
		case "return", "ret":
			arg.Direction = db.DirReturn
		default:
			return nil, nil, fmt.Errorf("argument %q: unknown direction %q", name, dir)
		}
		if name == "" {
			return nil, nil, fmt.Errorf("argument %q has no name", tok)
		}
		args = append(args, arg)
	}
	return args, positionals, nil
}

// ToParams converts arguments to Store parameters, keeping their order.
func ToParams(args []Arg) []db.Param {
	out := make([]db.Param, len(args))
	for i, a := range args {
		p := db.Param{Name: a.Name, Direction: a.Direction}
		if a.HasValue {
			p.Value = a.Value
		}
		out[i] = p
	}
	return out
}

// DisplayCall renders the call for the prompt header, quoting values that do
// not look numeric.
func DisplayCall(proc string, args []Arg) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		var value string
		switch {
		case a.Direction == db.DirOut || a.Direction == db.DirReturn:
			value = strings.ToUpper(a.Direction.String())
		case !a.HasValue:
			value = "?"
		case isNumeric(a.Value):
			value = a.Value
		default:
			value = "'" + strings.ReplaceAll(a.Value, "'", "''") + "'"
		}
		parts = append(parts, a.Name+" => "+value)
	}
	return fmt.Sprintf("%s(%s)", proc, strings.Join(parts, ", "))
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}

	hasDigits := false
	hasDot := false

	for i, r := range s {
		if r >= '0' && r <= '9' {
			hasDigits = true
		} else if r == '.' && !hasDot && i > 0 && i < len(s)-1 {
			hasDot = true
		} else if (r == '-' || r == '+') && i == 0 {
			// leading sign
		} else {
			return false
		}
	}

	return hasDigits
}
