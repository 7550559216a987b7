package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ReadCSV decodes a delimited export into a Table. The first record is the
// header; every required column must appear in it or a SchemaError is
// returned before any row is read. Ragged rows are rejected by the csv
// reader itself.
func ReadCSV(name string, r io.Reader, required ...string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &SchemaError{Table: name, Missing: required}
	}
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", name, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	t := New(name, header)
	if err := t.Require(required...); err != nil {
		return nil, err
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s row %d: %w", name, t.Len()+1, err)
		}
		if err := t.AppendRow(rec); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ReadCSVLatin1 reads a Windows-1252 encoded export. ERP systems around the
// original data source emit Latin-1 CSVs with accented column values.
func ReadCSVLatin1(name string, r io.Reader, required ...string) (*Table, error) {
	return ReadCSV(name, transform.NewReader(r, charmap.Windows1252.NewDecoder()), required...)
}

// WriteCSV encodes the table with its header, preserving column order.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write %s header: %w", t.Name, err)
	}
	for i, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write %s row %d: %w", t.Name, i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
