// Package memory is an in-process spreadsheet used by tests and by the
// worker when no spreadsheet is configured.
package memory

import (
	"context"
	"slices"
	"sync"

	"vanta/internal/sheets"
)

var _ sheets.TableStore = (*Store)(nil)

type Store struct {
	mu     sync.Mutex
	tables map[string][][]string
	writes map[string]int
}

func New() *Store {
	return &Store{tables: map[string][][]string{}, writes: map[string]int{}}
}

func (s *Store) ReplaceTable(ctx context.Context, sheet string, header []string, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t := sheets.Table(slices.Clone(header), cloneRows(rows))
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[sheet] = t
	s.writes[sheet]++
	return nil
}

func (s *Store) ReadTable(ctx context.Context, sheet string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRows(s.tables[sheet]), nil
}

// Writes reports how many times sheet was replaced.
func (s *Store) Writes(sheet string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes[sheet]
}

// Sheets lists the sheet names written so far, sorted.
func (s *Store) Sheets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.tables))
	for k := range s.tables {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func cloneRows(in [][]string) [][]string {
	if in == nil {
		return nil
	}
	out := make([][]string, len(in))
	for i, r := range in {
		out[i] = slices.Clone(r)
	}
	return out
}
