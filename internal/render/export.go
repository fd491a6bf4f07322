package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
)

type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatTSV      Format = "tsv"
	FormatMarkdown Format = "markdown"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "t", "tsv":
		return FormatTSV, nil
	case "c", "csv":
		return FormatCSV, nil
	case "j", "json":
		return FormatJSON, nil
	case "m", "md", "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// Export formats rows for the clipboard.
func Export(format Format, headers []string, rows [][]string) (string, error) {
	switch format {
	case FormatCSV:
		return formatCSV(headers, rows)
	case FormatJSON:
		return formatJSON(headers, rows)
	case FormatMarkdown:
		return formatMarkdown(headers, rows), nil
	default:
		return formatTSV(headers, rows), nil
	}
}

func formatCSV(headers []string, rows [][]string) (string, error) {
	var buf strings.Builder
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return "", err
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatJSON(headers []string, rows [][]string) (string, error) {
	objects := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		obj := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(row) {
				obj[header] = row[i]
			}
		}
		objects = append(objects, obj)
	}

	data, err := json.MarshalIndent(objects, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func formatTSV(headers []string, rows [][]string) string {
	var buf strings.Builder
	buf.WriteString(strings.Join(headers, "\t") + "\n")
	for _, row := range rows {
		buf.WriteString(strings.Join(row, "\t") + "\n")
	}
	return buf.String()
}

func formatMarkdown(headers []string, rows [][]string) string {
	var buf strings.Builder

	buf.WriteString("|")
	for _, header := range headers {
		buf.WriteString(" " + header + " |")
	}
	buf.WriteString("\n|")
	for range headers {
		buf.WriteString(" --- |")
	}
	buf.WriteString("\n")

	for _, row := range rows {
		buf.WriteString("|")
		for _, cell := range row {
			buf.WriteString(" " + strings.ReplaceAll(cell, "|", `\|`) + " |")
		}
		buf.WriteString("\n")
	}
	return buf.String()
}
