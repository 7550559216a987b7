package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/selhani/achats-analytics/internal/pipeline"
)

// The store implements pipeline.Sink with full-replace semantics: each
// artifact write truncates its table and batch-copies the new rows inside
// one transaction. Artifacts commit independently so a failed one does not
// roll back the others.

func (s *Store) WriteTransactions(ctx context.Context, txs []pipeline.Transaction) error {
	return s.replace(ctx, "achats",
		[]string{"num_bon_pese", "designation_article", "date_br", "code_fournisseur",
			"nom_bateau", "qte_recue", "qte_facturee", "qualite", "moule", "pu", "montant_achat"},
		len(txs),
		func(stmt *sql.Stmt, i int) error {
			t := txs[i]
			_, err := stmt.ExecContext(ctx, t.BundleID, t.Article, t.Date, t.SupplierCode,
				t.Boat, t.QuantityReceived, t.QuantityInvoiced, t.Quality, t.Mold,
				t.UnitPrice, t.Amount)
			return err
		})
}

func (s *Store) WriteSuppliers(ctx context.Context, suppliers []pipeline.Supplier) error {
	return s.replace(ctx, "fournisseurs",
		[]string{"code_fournisseur", "designation_fournisseur"},
		len(suppliers),
		func(stmt *sql.Stmt, i int) error {
			_, err := stmt.ExecContext(ctx, suppliers[i].Code, suppliers[i].Name)
			return err
		})
}

func (s *Store) WriteArticles(ctx context.Context, articles []pipeline.Article) error {
	return s.replace(ctx, "produits",
		[]string{"designation_article", "famille", "ca"},
		len(articles),
		func(stmt *sql.Stmt, i int) error {
			a := articles[i]
			var ca sql.NullFloat64
			if a.Revenue != nil {
				ca = sql.NullFloat64{Float64: *a.Revenue, Valid: true}
			}
			_, err := stmt.ExecContext(ctx, a.Name, a.Family, ca)
			return err
		})
}

// replace truncates the table and copies n rows through pq.CopyIn.
func (s *Store) replace(ctx context.Context, table string, columns []string, n int, exec func(*sql.Stmt, int) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace %s: begin: %w", table, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "TRUNCATE TABLE "+table); err != nil {
		return fmt.Errorf("replace %s: truncate: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(table, columns...))
	if err != nil {
		return fmt.Errorf("replace %s: prepare copy: %w", table, err)
	}
	for i := 0; i < n; i++ {
		if err := exec(stmt, i); err != nil {
			stmt.Close()
			return fmt.Errorf("replace %s: copy row %d: %w", table, i, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("replace %s: flush copy: %w", table, err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("replace %s: close copy: %w", table, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace %s: commit: %w", table, err)
	}
	return nil
}
