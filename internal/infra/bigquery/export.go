// Package bigquery exports the normalized purchase tables to a BigQuery
// dataset, the analytics warehouse sitting next to the operational Postgres
// store.
package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"

	"github.com/selhani/achats-analytics/internal/pipeline"
)

const (
	transactionsTable = "achats"
	suppliersTable    = "fournisseurs"
	articlesTable     = "produits"
)

// TransactionRow is one purchase line in the achats table.
type TransactionRow struct {
	BundleID         string     `bigquery:"num_bon_pese"`
	Article          string     `bigquery:"designation_article"`
	Date             civil.Date `bigquery:"date_br"`
	SupplierCode     string     `bigquery:"code_fournisseur"`
	Boat             string     `bigquery:"nom_bateau"`
	QuantityReceived float64    `bigquery:"qte_recue"`
	QuantityInvoiced float64    `bigquery:"qte_facturee"`
	Quality          string     `bigquery:"qualite"`
	Mold             string     `bigquery:"moule"`
	UnitPrice        float64    `bigquery:"pu"`
	Amount           float64    `bigquery:"montant_achat"`
	LoadedTS         time.Time  `bigquery:"loaded_ts"`
}

// SupplierRow is one row of the fournisseurs reference table.
type SupplierRow struct {
	Code     string    `bigquery:"code_fournisseur"`
	Name     string    `bigquery:"designation_fournisseur"`
	LoadedTS time.Time `bigquery:"loaded_ts"`
}

// ArticleRow is one row of the produits reference table. Revenue is NULLABLE:
// an article with no matching transactions exports as NULL, not 0.
type ArticleRow struct {
	Name     string               `bigquery:"designation_article"`
	Family   string               `bigquery:"famille"`
	Revenue  bigquery.NullFloat64 `bigquery:"ca"`
	LoadedTS time.Time            `bigquery:"loaded_ts"`
}

// Exporter writes normalization artifacts into one dataset. It implements
// pipeline.Sink.
type Exporter struct {
	client  *bigquery.Client
	project string
	dataset string
}

// NewExporter opens a BigQuery client for the given project and dataset.
func NewExporter(ctx context.Context, project, dataset string) (*Exporter, error) {
	client, err := bigquery.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("bigquery client: %w", err)
	}
	return &Exporter{client: client, project: project, dataset: dataset}, nil
}

// Close releases the underlying client.
func (e *Exporter) Close() error { return e.client.Close() }

func (e *Exporter) inserter(table string) *bigquery.Inserter {
	return e.client.DatasetInProject(e.project, e.dataset).Table(table).Inserter()
}

func (e *Exporter) WriteTransactions(ctx context.Context, txs []pipeline.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	now := time.Now()
	rows := make([]*TransactionRow, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, &TransactionRow{
			BundleID:         t.BundleID,
			Article:          t.Article,
			Date:             civil.DateOf(t.Date),
			SupplierCode:     t.SupplierCode,
			Boat:             t.Boat,
			QuantityReceived: t.QuantityReceived,
			QuantityInvoiced: t.QuantityInvoiced,
			Quality:          t.Quality,
			Mold:             t.Mold,
			UnitPrice:        t.UnitPrice,
			Amount:           t.Amount,
			LoadedTS:         now,
		})
	}
	if err := e.inserter(transactionsTable).Put(ctx, rows); err != nil {
		return fmt.Errorf("export %s: %w", transactionsTable, err)
	}
	return nil
}

func (e *Exporter) WriteSuppliers(ctx context.Context, suppliers []pipeline.Supplier) error {
	if len(suppliers) == 0 {
		return nil
	}
	now := time.Now()
	rows := make([]*SupplierRow, 0, len(suppliers))
	for _, s := range suppliers {
		rows = append(rows, &SupplierRow{Code: s.Code, Name: s.Name, LoadedTS: now})
	}
	if err := e.inserter(suppliersTable).Put(ctx, rows); err != nil {
		return fmt.Errorf("export %s: %w", suppliersTable, err)
	}
	return nil
}

func (e *Exporter) WriteArticles(ctx context.Context, articles []pipeline.Article) error {
	if len(articles) == 0 {
		return nil
	}
	now := time.Now()
	rows := make([]*ArticleRow, 0, len(articles))
	for _, a := range articles {
		row := &ArticleRow{Name: a.Name, Family: a.Family, LoadedTS: now}
		if a.Revenue != nil {
			row.Revenue = bigquery.NullFloat64{Float64: *a.Revenue, Valid: true}
		}
		rows = append(rows, row)
	}
	if err := e.inserter(articlesTable).Put(ctx, rows); err != nil {
		return fmt.Errorf("export %s: %w", articlesTable, err)
	}
	return nil
}

// QueryTransactionsByDateRange reads exported purchase rows back from the
// warehouse for ad-hoc analysis.
func (e *Exporter) QueryTransactionsByDateRange(ctx context.Context, start, end time.Time) ([]*TransactionRow, error) {
	q := e.client.Query(fmt.Sprintf(`
		SELECT num_bon_pese, designation_article, date_br, code_fournisseur,
			nom_bateau, qte_recue, qte_facturee, qualite, moule, pu,
			montant_achat, loaded_ts
		FROM `+"`%s.%s.%s`"+`
		WHERE date_br BETWEEN @start AND @end
		ORDER BY date_br`, e.project, e.dataset, transactionsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "start", Value: civil.DateOf(start)},
		{Name: "end", Value: civil.DateOf(end)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", transactionsTable, err)
	}

	var out []*TransactionRow
	for {
		var row TransactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("query %s: iterate: %w", transactionsTable, err)
		}
		out = append(out, &row)
	}
	return out, nil
}
