package controller

import "strings"

// EncodeCSV renders a header and rows as comma-separated text. Every field
// is double-quoted with embedded quotes doubled; lines are joined by "\n".
func EncodeCSV(header []string, rows [][]string) string {
	var b strings.Builder
	writeCSVLine(&b, header)
	for _, row := range rows {
		b.WriteByte('\n')
		writeCSVLine(&b, row)
	}
	return b.String()
}

func writeCSVLine(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
}
