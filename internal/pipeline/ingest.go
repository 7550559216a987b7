package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/selhani/achats-analytics/internal/dataset"
	"github.com/selhani/achats-analytics/internal/logger"
)

// SourceFetcher retrieves the raw export bytes for a URI. The GCS client in
// internal/gcs is the production implementation; tests substitute their own.
type SourceFetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// Options tunes one ingestion run.
type Options struct {
	// Latin1 decodes the export as Windows-1252 instead of UTF-8.
	Latin1 bool
}

// Result summarizes one ingestion run.
type Result struct {
	RunID      string
	SourceRows int
	CleanRows  int
	Tables     Tables
	Reports    []SinkReport
}

// IngestCSV fetches a purchase export, cleans and normalizes it, and writes
// the artifacts to every sink. Row-level defects are dropped silently;
// a missing column aborts with a dataset.SchemaError before any sink is
// touched.
func IngestCSV(ctx context.Context, fetcher SourceFetcher, uri string, opts Options, sinks ...Sink) (*Result, error) {
	raw, err := fetcher.Fetch(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", uri, err)
	}
	return IngestReader(ctx, bytes.NewReader(raw), opts, sinks...)
}

// IngestReader runs the pipeline over an already-opened export.
func IngestReader(ctx context.Context, r io.Reader, opts Options, sinks ...Sink) (*Result, error) {
	log := logger.FromContext(ctx)
	runID := uuid.New().String()

	read := dataset.ReadCSV
	if opts.Latin1 {
		read = dataset.ReadCSVLatin1
	}
	table, err := read("achats", r, RawColumns()...)
	if err != nil {
		return nil, err
	}
	if table.Col(ColQtyInvoiced) < 0 && table.Col(ColQtyInvoicedASCII) < 0 {
		return nil, &dataset.SchemaError{Table: table.Name, Missing: []string{ColQtyInvoiced}}
	}

	txs := Clean(table)
	tables := Normalize(txs)

	log.Info().
		Str("run_id", runID).
		Int("source_rows", table.Len()).
		Int("clean_rows", len(txs)).
		Int("suppliers", len(tables.Suppliers)).
		Int("articles", len(tables.Articles)).
		Msg("Normalized purchase export")

	res := &Result{
		RunID:      runID,
		SourceRows: table.Len(),
		CleanRows:  len(txs),
		Tables:     tables,
	}

	var firstErr error
	for _, sink := range sinks {
		report := WriteAll(ctx, sink, tables)
		res.Reports = append(res.Reports, report)
		if err := report.Err(); err != nil {
			log.Error().Err(err).Str("run_id", runID).Msg("Sink write failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return res, firstErr
}
