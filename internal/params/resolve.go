package params

import (
	"fmt"

	"github.com/ict4events/eventsite/internal/db"
)

// ResolveParameters merges named arguments with required input names (the
// catalogue placeholders and any --param names). Positional values fill the
// required names that are still unset, in order. It returns the merged
// arguments and the required names that still lack a value.
func ResolveParameters(required []string, named []Arg, positionals []string) ([]Arg, []string, error) {
	result := make([]Arg, len(named))
	copy(result, named)

	index := make(map[string]int, len(result))
	for i, a := range result {
		index[a.Name] = i
	}

	var missing []string
	for _, name := range required {
		i, exists := index[name]
		if exists && (result[i].HasValue || !needsValue(result[i].Direction)) {
			continue
		}
		if len(positionals) > 0 {
			value := positionals[0]
			positionals = positionals[1:]
			if exists {
				result[i].Value, result[i].HasValue = value, true
			} else {
				index[name] = len(result)
				result = append(result, Arg{Name: name, Value: value, HasValue: true})
			}
			continue
		}
		if !exists {
			index[name] = len(result)
			result = append(result, Arg{Name: name})
		}
		missing = append(missing, name)
	}

	if len(positionals) > 0 {
		return nil, nil, fmt.Errorf("%d unused positional value(s): %v", len(positionals), positionals)
	}
	return result, missing, nil
}

func needsValue(d db.Direction) bool {
	return d == db.DirIn || d == db.DirInOut
}

// Fill sets the prompted values on their arguments.
func Fill(args []Arg, values map[string]string) []Arg {
	for i := range args {
		if v, ok := values[args[i].Name]; ok {
			args[i].Value, args[i].HasValue = v, true
		}
	}
	return args
}

// Reserved flags that cannot be used as parameter names
var reservedFlags = map[string]bool{
	"dict":     true,
	"scalar":   true,
	"nonquery": true,
	"copy":     true,
	"format":   true,
	"param":    true,
	"help":     true,
	"h":        true,
}

func ValidateParamNames(args []Arg) error {
	for _, a := range args {
		if reservedFlags[a.Name] {
			return fmt.Errorf("parameter name '%s' conflicts with reserved flag", a.Name)
		}
	}
	return nil
}
