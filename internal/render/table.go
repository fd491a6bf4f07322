// Package render prints procedure results for the command line.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/ict4events/eventsite/internal/styles"
)

const maxCellWidth = 40

// Table writes a bordered table followed by a row count and timing footer.
func Table(w io.Writer, columns []string, rows [][]string, elapsed time.Duration) error {
	widths := columnWidths(columns, rows)
	sep := styles.TableBorder.Render(" │ ")

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = styles.TableHeader.Render(formatCell(c, widths[i]))
	}
	if _, err := fmt.Fprintln(w, strings.Join(header, sep)); err != nil {
		return err
	}

	rule := make([]string, len(columns))
	for i := range columns {
		rule[i] = strings.Repeat("─", widths[i])
	}
	fmt.Fprintln(w, styles.TableBorder.Render(strings.Join(rule, "─┼─")))

	for _, row := range rows {
		cells := make([]string, len(columns))
		for i := range columns {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			cells[i] = styles.TableCell.Render(formatCell(value, widths[i]))
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, sep)); err != nil {
			return err
		}
	}

	if len(rows) == 0 {
		fmt.Fprintln(w, styles.Faint.Render("Nothing to show here..."))
	}
	_, err := fmt.Fprintln(w, styles.Faint.Render(footer(len(rows), elapsed)))
	return err
}

func footer(n int, elapsed time.Duration) string {
	noun := "rows"
	if n == 1 {
		noun = "row"
	}
	return fmt.Sprintf("%d %s in %.2fs", n, noun, elapsed.Seconds())
}

func columnWidths(columns []string, rows [][]string) []int {
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = runewidth.StringWidth(c)
	}
	for _, row := range rows {
		for i := range columns {
			if i < len(row) {
				widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
			}
		}
	}
	for i := range widths {
		widths[i] = max(1, min(widths[i], maxCellWidth))
	}
	return widths
}

// formatCell pads or truncates to exactly width terminal cells.
func formatCell(content string, width int) string {
	content = strings.ReplaceAll(content, "\n", " ")
	if runewidth.StringWidth(content) > width {
		content = runewidth.Truncate(content, width, "…")
	}
	return runewidth.FillRight(content, width)
}

// KeyValue prints name/value pairs, used for output parameters and scalars.
func KeyValue(w io.Writer, pairs [][2]string) {
	width := 0
	for _, p := range pairs {
		width = max(width, runewidth.StringWidth(p[0]))
	}
	for _, p := range pairs {
		fmt.Fprintf(w, "%s %s\n", styles.TableHeader.Render(runewidth.FillRight(p[0], width)), styles.Literal.Render(p[1]))
	}
}
