package params

import (
	"regexp"
	"strings"
)

// placeholderRegex matches :name placeholders in a catalogue body. A leading
// colon pair (PostgreSQL casts such as ::text) is not a placeholder.
var placeholderRegex = regexp.MustCompile(`(^|[^:\w]):(\w+)`)

// ExtractPlaceholders lists the :name placeholders of a SQL body in order of
// first appearance, ignoring comments and string literals.
func ExtractPlaceholders(sql string) []string {
	clean := removeStringLiterals(removeComments(sql))

	var names []string
	seen := make(map[string]bool)
	for _, match := range placeholderRegex.FindAllStringSubmatch(clean, -1) {
		name := match[2]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// removeComments removes both -- and /* */ style comments from SQL
func removeComments(sql string) string {
	var result strings.Builder
	lines := strings.Split(sql, "\n")

	for _, line := range lines {
		if idx := strings.Index(line, "--"); idx != -1 {
			line = line[:idx]
		}
		result.WriteString(line + "\n")
	}

	return removeBlockComments(result.String())
}

// removeBlockComments removes /* */ style comments
func removeBlockComments(sql string) string {
	var result strings.Builder
	inBlockComment := false

	for i := 0; i < len(sql); i++ {
		if i+1 < len(sql) && sql[i:i+2] == "/*" {
			inBlockComment = true
			i++
		} else if i+1 < len(sql) && sql[i:i+2] == "*/" {
			inBlockComment = false
			i++
		} else if !inBlockComment {
			result.WriteByte(sql[i])
		}
	}

	return result.String()
}

func removeStringLiterals(sql string) string {
	var result strings.Builder
	inString := false
	for i := 0; i < len(sql); i++ {
		if sql[i] == '\'' {
			inString = !inString
			result.WriteByte(' ')
			continue
		}
		if !inString {
			result.WriteByte(sql[i])
		}
	}
	return result.String()
}
