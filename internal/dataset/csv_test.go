package dataset

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestReadCSV(t *testing.T) {
	in := "a,b,c\n1,2,3\n4,5,6\n"

	table, err := ReadCSV("test", strings.NewReader(in), "a", "c")
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if table.Len() != 2 {
		t.Errorf("Len = %d, want 2", table.Len())
	}
	if got := table.Cell(1, "b"); got != "5" {
		t.Errorf("Cell(1, b) = %q, want \"5\"", got)
	}
	if table.Col("missing") != -1 {
		t.Error("Col should return -1 for unknown column")
	}
}

func TestReadCSV_MissingColumns(t *testing.T) {
	in := "a,b\n1,2\n"

	_, err := ReadCSV("test", strings.NewReader(in), "a", "c", "d")

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("want SchemaError, got %v", err)
	}
	if len(schemaErr.Missing) != 2 {
		t.Errorf("Missing = %v, want [c d]", schemaErr.Missing)
	}
}

func TestReadCSV_EmptyInput(t *testing.T) {
	_, err := ReadCSV("test", strings.NewReader(""), "a")
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("want SchemaError for empty input, got %v", err)
	}
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	table := New("out", []string{"x", "y"})
	table.AppendRow([]string{"1", "deux"})
	table.AppendRow([]string{"3", "quatre, virgule"})

	var buf bytes.Buffer
	if err := WriteCSV(&buf, table); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	back, err := ReadCSV("out", &buf, "x", "y")
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if got := back.Cell(1, "y"); got != "quatre, virgule" {
		t.Errorf("round-tripped cell = %q", got)
	}
}

func TestReadCSVLatin1(t *testing.T) {
	// "Qualité" encoded as Windows-1252: é is 0xE9.
	raw := []byte("col\nQualit\xe9\n")

	table, err := ReadCSVLatin1("test", bytes.NewReader(raw), "col")
	if err != nil {
		t.Fatalf("ReadCSVLatin1 failed: %v", err)
	}
	if got := table.Cell(0, "col"); got != "Qualité" {
		t.Errorf("decoded cell = %q, want \"Qualité\"", got)
	}
}

func TestAppendRow_WidthMismatch(t *testing.T) {
	table := New("test", []string{"a", "b"})
	if err := table.AppendRow([]string{"only one"}); err == nil {
		t.Error("want error for short row")
	}
}
