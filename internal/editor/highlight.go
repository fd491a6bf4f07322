package editor

import (
	"regexp"
	"strings"

	"github.com/ict4events/eventsite/internal/styles"
)

var (
	keywords = map[string]bool{
		"SELECT": true, "FROM": true, "WHERE": true, "AND": true, "OR": true,
		"INSERT": true, "INTO": true, "VALUES": true, "UPDATE": true, "SET": true,
		"DELETE": true, "JOIN": true, "LEFT": true, "ON": true, "ORDER": true,
		"BY": true, "GROUP": true, "LIMIT": true, "AS": true, "NULL": true,
		"RETURNING": true, "DESC": true, "ASC": true, "COUNT": true,
	}
	tokenRegex = regexp.MustCompile(`'[^']*'|:[A-Za-z_][A-Za-z0-9_]*|[A-Za-z_]+|\s+|.`)
)

// Highlight colours keywords, string literals and :name placeholders.
func Highlight(sql string) string {
	var b strings.Builder
	for _, tok := range tokenRegex.FindAllString(sql, -1) {
		switch {
		case strings.HasPrefix(tok, "'"):
			b.WriteString(styles.Literal.Render(tok))
		case strings.HasPrefix(tok, ":") && len(tok) > 1:
			b.WriteString(styles.Success.Render(tok))
		case keywords[strings.ToUpper(tok)]:
			b.WriteString(styles.Keyword.Render(tok))
		default:
			b.WriteString(tok)
		}
	}
	return b.String()
}
