// Package table renders rows of cells as pipe-delimited Markdown tables.
// Rows may be ragged; output is always rectangular. The first row is the
// header for both spreadsheet and DOM tables.
package table

import (
	"strings"
)

// artifactToken is the carriage-return escape spreadsheet exporters leak into cells.
const artifactToken = "_x000D_"

// Render returns rows as a Markdown table, or "" when there is nothing to
// render. Every emitted line, separator included, has maxCols cells.
func Render(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	return RenderWithHeader(rows[0], rows[1:])
}

// RenderWithHeader renders an explicit header row above rows.
func RenderWithHeader(header []string, rows [][]string) string {
	maxCols := len(header)
	for _, r := range rows {
		if len(r) > maxCols {
			maxCols = len(r)
		}
	}
	if maxCols == 0 {
		return ""
	}

	sep := make([]string, maxCols)
	for i := range sep {
		sep[i] = "---"
	}

	lines := make([]string, 0, len(rows)+2)
	lines = append(lines, line(pad(header, maxCols)), line(sep))
	for _, r := range rows {
		lines = append(lines, line(pad(r, maxCols)))
	}
	return strings.Join(lines, "\n")
}

// CleanCell strips the artifact token, flattens newlines and escapes pipes.
func CleanCell(cell string) string {
	cell = strings.ReplaceAll(cell, artifactToken, "")
	cell = strings.ReplaceAll(cell, "\r\n", " ")
	cell = strings.ReplaceAll(cell, "\n", " ")
	cell = strings.ReplaceAll(cell, "|", `\|`)
	return strings.TrimSpace(cell)
}

func pad(row []string, n int) []string {
	out := make([]string, n)
	for i := range out {
		if i < len(row) {
			out[i] = CleanCell(row[i])
		}
	}
	return out
}

func line(cells []string) string {
	return "| " + strings.Join(cells, " | ") + " |"
}
