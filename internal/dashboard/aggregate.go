// Package dashboard derives chart-ready summaries from filtered purchase
// rows. Filtering itself belongs to the query layer; everything here is a
// pure function of its inputs.
package dashboard

import (
	"math"

	"github.com/selhani/achats-analytics/internal/pipeline"
)

// BPRow is one externally sourced reconciliation record, pre-aggregated per
// supplier. An empty supplier code is charted under the "NA" key.
type BPRow struct {
	SupplierCode     string
	TotalPaid        float64
	TotalReceived    float64
	TotalInvoiced    float64
	QuantityVariance float64
	AmountVariance   float64
}

// Series is an insertion-ordered label/value mapping, shaped for bar charts.
// Labels keep first-seen order, which is what the renderer uses for the
// category axis.
type Series struct {
	Labels []string
	Values []float64
}

// Add accumulates delta under label, appending the label on first sight.
func (s *Series) Add(label string, delta float64) {
	for i, l := range s.Labels {
		if l == label {
			s.Values[i] += delta
			return
		}
	}
	s.Labels = append(s.Labels, label)
	s.Values = append(s.Values, delta)
}

// Totals are the dashboard-level scalars summed over the reconciliation set.
type Totals struct {
	Paid             float64
	Received         float64
	Invoiced         float64
	AmountVariance   float64
	QuantityVariance float64
}

// Summary is everything the dashboard renders for one filter selection.
type Summary struct {
	RevenueByArticle     Series
	VarianceBySupplier   Series
	QuantityByArticle    Series
	BPVarianceBySupplier Series
	Totals               Totals

	// AmountMin and AmountMax bound the amount range control. They come
	// from the unfiltered transaction set, with 100 of headroom on top.
	AmountMin float64
	AmountMax float64
}

// Aggregate computes the four chart series and the totals. filtered carries
// the user's current selection, all is the unfiltered set used only for the
// amount range, and bp is the reconciliation table. Empty inputs degrade to
// empty series and zero scalars.
func Aggregate(filtered []pipeline.Transaction, all []pipeline.Transaction, bp []BPRow) Summary {
	var s Summary

	for _, tx := range filtered {
		s.RevenueByArticle.Add(tx.Article, tx.Amount)
		s.VarianceBySupplier.Add(tx.SupplierCode, math.Abs(tx.QuantityReceived-tx.QuantityInvoiced))
		s.QuantityByArticle.Add(tx.Article, tx.QuantityReceived)
	}

	for _, row := range bp {
		code := row.SupplierCode
		if code == "" {
			code = "NA"
		}
		s.BPVarianceBySupplier.Add(code, row.QuantityVariance)

		s.Totals.Paid += row.TotalPaid
		s.Totals.Received += row.TotalReceived
		s.Totals.Invoiced += row.TotalInvoiced
		s.Totals.AmountVariance += row.AmountVariance
		s.Totals.QuantityVariance += row.QuantityVariance
	}

	s.AmountMin, s.AmountMax = amountRange(all)
	return s
}

// amountRange returns (min, max+100) of the purchase amounts, (0, 0) when
// the set is empty.
func amountRange(all []pipeline.Transaction) (float64, float64) {
	if len(all) == 0 {
		return 0, 0
	}
	min, max := all[0].Amount, all[0].Amount
	for _, tx := range all[1:] {
		if tx.Amount < min {
			min = tx.Amount
		}
		if tx.Amount > max {
			max = tx.Amount
		}
	}
	return min, max + 100
}
