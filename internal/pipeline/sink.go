package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/selhani/achats-analytics/internal/dataset"
)

// ErrSinkWrite marks persistence failures so callers can tell a sink problem
// apart from a data problem with errors.Is.
var ErrSinkWrite = errors.New("sink write failed")

// Sink persists the three normalization artifacts. Implementations decide
// the storage technology; the pipeline only decides what the rows are.
type Sink interface {
	WriteTransactions(ctx context.Context, txs []Transaction) error
	WriteSuppliers(ctx context.Context, suppliers []Supplier) error
	WriteArticles(ctx context.Context, articles []Article) error
}

// SinkReport records the per-artifact outcome of one WriteAll call. Writes
// are best effort: a failed artifact does not stop the remaining ones.
type SinkReport struct {
	Transactions error
	Suppliers    error
	Articles     error
}

// Err aggregates the report into a single error, nil when every artifact
// was written.
func (r SinkReport) Err() error {
	var failed []string
	for _, f := range []struct {
		name string
		err  error
	}{
		{"transactions", r.Transactions},
		{"suppliers", r.Suppliers},
		{"articles", r.Articles},
	} {
		if f.err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", f.name, f.err))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrSinkWrite, strings.Join(failed, "; "))
}

// WriteAll writes all three artifacts to the sink and reports which
// succeeded.
func WriteAll(ctx context.Context, sink Sink, t Tables) SinkReport {
	return SinkReport{
		Transactions: sink.WriteTransactions(ctx, t.Transactions),
		Suppliers:    sink.WriteSuppliers(ctx, t.Suppliers),
		Articles:     sink.WriteArticles(ctx, t.Articles),
	}
}

// CSVSink writes the artifacts as Achats.csv, Fournisseurs.csv and
// Produits.csv under a directory.
type CSVSink struct {
	Dir string
}

func (s CSVSink) WriteTransactions(ctx context.Context, txs []Transaction) error {
	return s.writeFile(Tables{Transactions: txs}.TransactionTable())
}

func (s CSVSink) WriteSuppliers(ctx context.Context, suppliers []Supplier) error {
	return s.writeFile(Tables{Suppliers: suppliers}.SupplierTable())
}

func (s CSVSink) WriteArticles(ctx context.Context, articles []Article) error {
	return s.writeFile(Tables{Articles: articles}.ArticleTable())
}

func (s CSVSink) writeFile(t *dataset.Table) error {
	path := filepath.Join(s.Dir, t.Name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := dataset.WriteCSV(f, t); err != nil {
		return err
	}
	return f.Close()
}
