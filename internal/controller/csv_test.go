package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeCSV(t *testing.T) {
	cases := []struct {
		name   string
		header []string
		rows   [][]string
		want   string
	}{
		{"header only", []string{"a", "b"}, nil, `"a","b"`},
		{"quotes doubled", []string{"q"}, [][]string{{`say "hi"`}}, "\"q\"\n\"say \"\"hi\"\"\""},
		{"comma and newline kept inside quotes", []string{"x"}, [][]string{{"a,b\nc"}}, "\"x\"\n\"a,b\nc\""},
		{"empty field", []string{"x", "y"}, [][]string{{"", "1"}}, "\"x\",\"y\"\n\"\",\"1\""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EncodeCSV(tc.header, tc.rows))
		})
	}
}
