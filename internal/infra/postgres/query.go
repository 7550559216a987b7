package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/selhani/achats-analytics/internal/dashboard"
	"github.com/selhani/achats-analytics/internal/pipeline"
)

// ErrQuery marks query-provider failures so callers can tell them apart
// from sink failures with errors.Is.
var ErrQuery = errors.New("query failed")

// Filter is the dashboard's selection. Nil / empty fields are not applied.
// Substring fields match case-insensitively, mirroring the ILIKE filters the
// dashboard has always exposed.
type Filter struct {
	DateFrom  *time.Time
	DateTo    *time.Time
	Supplier  string
	Article   string
	AmountMin *float64
	AmountMax *float64
}

const transactionColumns = `num_bon_pese, designation_article, date_br, code_fournisseur,
		nom_bateau, qte_recue, qte_facturee, qualite, moule, pu, montant_achat`

// FilteredTransactions returns the purchase rows matching the filter.
func (s *Store) FilteredTransactions(ctx context.Context, f Filter) ([]pipeline.Transaction, error) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.DateFrom != nil {
		add("date_br >= $%d", *f.DateFrom)
	}
	if f.DateTo != nil {
		add("date_br <= $%d", *f.DateTo)
	}
	if f.Supplier != "" {
		add("code_fournisseur ILIKE '%%' || $%d || '%%'", f.Supplier)
	}
	if f.Article != "" {
		add("designation_article ILIKE '%%' || $%d || '%%'", f.Article)
	}
	if f.AmountMin != nil {
		add("montant_achat >= $%d", *f.AmountMin)
	}
	if f.AmountMax != nil {
		add("montant_achat <= $%d", *f.AmountMax)
	}

	query := "SELECT " + transactionColumns + " FROM achats"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	return s.queryTransactions(ctx, query, args...)
}

// AllTransactions returns the unfiltered purchase set, used for the amount
// range control and the weekly report.
func (s *Store) AllTransactions(ctx context.Context) ([]pipeline.Transaction, error) {
	return s.queryTransactions(ctx, "SELECT "+transactionColumns+" FROM achats")
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...interface{}) ([]pipeline.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: achats: %v", ErrQuery, err)
	}
	defer rows.Close()

	var out []pipeline.Transaction
	for rows.Next() {
		var t pipeline.Transaction
		if err := rows.Scan(&t.BundleID, &t.Article, &t.Date, &t.SupplierCode,
			&t.Boat, &t.QuantityReceived, &t.QuantityInvoiced, &t.Quality, &t.Mold,
			&t.UnitPrice, &t.Amount); err != nil {
			return nil, fmt.Errorf("%w: scan achats: %v", ErrQuery, err)
		}
		t.Variance = t.QuantityReceived - t.QuantityInvoiced
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: achats rows: %v", ErrQuery, err)
	}
	return out, nil
}

// BPRows returns the reconciliation rows matching the filter. Only the date
// and supplier filters apply; the reconciliation table carries no article or
// amount columns to filter on.
func (s *Store) BPRows(ctx context.Context, f Filter) ([]dashboard.BPRow, error) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.DateFrom != nil {
		add("date_br >= $%d", *f.DateFrom)
	}
	if f.DateTo != nil {
		add("date_br <= $%d", *f.DateTo)
	}
	if f.Supplier != "" {
		add("code_fournisseur ILIKE '%%' || $%d || '%%'", f.Supplier)
	}

	query := `SELECT code_fournisseur, tot_paye, tot_recu, tot_facture, ecart_qt, ecart_montant FROM achats_bp`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: achats_bp: %v", ErrQuery, err)
	}
	defer rows.Close()

	var out []dashboard.BPRow
	for rows.Next() {
		var (
			row     dashboard.BPRow
			code    sql.NullString
			ecartQt sql.NullFloat64
		)
		if err := rows.Scan(&code, &row.TotalPaid, &row.TotalReceived,
			&row.TotalInvoiced, &ecartQt, &row.AmountVariance); err != nil {
			return nil, fmt.Errorf("%w: scan achats_bp: %v", ErrQuery, err)
		}
		// NULLs degrade the same way the dashboard always treated them:
		// missing supplier charts under "NA", missing variance counts as 0.
		row.SupplierCode = code.String
		row.QuantityVariance = ecartQt.Float64
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: achats_bp rows: %v", ErrQuery, err)
	}
	return out, nil
}
