// Package sheets defines the spreadsheet ports the mirror and the export
// command write through.
package sheets

import "context"

// Ports for outbound adapters.
type (
	// TableWriter replaces the whole content of one sheet with a header row
	// followed by rows. The sheet is created when missing.
	TableWriter interface {
		ReplaceTable(ctx context.Context, sheet string, header []string, rows [][]string) error
	}

	// TableReader returns every non-empty row of a sheet, header included.
	// A missing sheet reads as empty.
	TableReader interface {
		ReadTable(ctx context.Context, sheet string) ([][]string, error)
	}

	TableStore interface {
		TableWriter
		TableReader
	}
)

// Table joins header and rows the way a TableReader returns them.
func Table(header []string, rows [][]string) [][]string {
	out := make([][]string, 0, len(rows)+1)
	out = append(out, header)
	return append(out, rows...)
}
