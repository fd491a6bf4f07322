package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCell(t *testing.T) {
	tests := []struct {
		content string
		width   int
		want    string
	}{
		{"abc", 5, "abc  "},
		{"abcdefgh", 5, "abcd…"},
		{"日本語", 6, "日本語"},
		{"日本語です", 6, "日本… "},
		{"a\nb", 3, "a b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatCell(tt.content, tt.width), tt.content)
	}
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	err := Table(&buf, []string{"ID", "USERNAME"}, [][]string{{"1", "jan"}, {"2", ""}}, 1500*time.Millisecond)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "USERNAME")
	assert.Contains(t, out, "jan")
	assert.Contains(t, out, "2 rows in 1.50s")
	assert.Equal(t, 5, strings.Count(out, "\n"))
}

func TestTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Table(&buf, []string{"ID"}, nil, 0))
	assert.Contains(t, buf.String(), "Nothing to show here...")
	assert.Contains(t, buf.String(), "0 rows")
}

func TestExport(t *testing.T) {
	headers := []string{"ID", "BODY"}
	rows := [][]string{{"1", "hallo, wereld"}, {"2", "a|b"}}

	tsv, err := Export(FormatTSV, headers, rows)
	require.NoError(t, err)
	assert.Equal(t, "ID\tBODY\n1\thallo, wereld\n2\ta|b\n", tsv)

	csv, err := Export(FormatCSV, headers, rows)
	require.NoError(t, err)
	assert.Equal(t, "ID,BODY\n1,\"hallo, wereld\"\n2,a|b\n", csv)

	md, err := Export(FormatMarkdown, headers, rows)
	require.NoError(t, err)
	assert.Contains(t, md, `| 2 | a\|b |`)

	js, err := Export(FormatJSON, headers, rows[:1])
	require.NoError(t, err)
	assert.JSONEq(t, `[{"ID":"1","BODY":"hallo, wereld"}]`, js)

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}
