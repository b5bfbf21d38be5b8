package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestTableAlignsRows(t *testing.T) {
	var buf bytes.Buffer
	err := Table(&buf, []string{"Tag", "Amount"}, [][]string{
		{"Groceries", "$10.00"},
		{"Pets", "$2.50"},
	})
	if err != nil {
		t.Fatalf("Table() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("Table() wrote %d lines, want 4:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[2], "Groceries") || !strings.Contains(lines[3], "$2.50") {
		t.Errorf("unexpected rows:\n%s", buf.String())
	}
	if strings.Index(lines[2], "$10.00") != strings.Index(lines[3], "$2.50") {
		t.Errorf("amount column is not aligned:\n%s", buf.String())
	}
}
