// Package textutil holds the small text helpers used to render command help.
package textutil

import "strings"

// Wrap splits text into lines no wider than width. Words longer than width are kept on a line
// of their own.
func Wrap(text string, width int) []string {
	var (
		lines []string
		line  strings.Builder
	)
	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && line.Len()+1+len(word) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}

// Columns writes name/description rows aligned on a common column, wrapping descriptions to fit
// in 80 characters.
func Columns(b *strings.Builder, rows [][2]string) {
	maxLen := 0
	for _, r := range rows {
		maxLen = max(maxLen, len(r[0]))
	}
	nameWidth := maxLen + 4
	indent := strings.Repeat(" ", nameWidth+2)
	for _, r := range rows {
		lines := Wrap(r[1], 80-nameWidth)
		if len(lines) == 0 {
			b.WriteString("  " + r[0] + "\n")
			continue
		}
		b.WriteString("  " + r[0] + strings.Repeat(" ", nameWidth-len(r[0])) + lines[0] + "\n")
		for _, l := range lines[1:] {
			b.WriteString(indent + l + "\n")
		}
	}
}
