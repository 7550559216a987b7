package pipeline

import (
	"strconv"
	"strings"
	"time"

	"github.com/selhani/achats-analytics/internal/dataset"
)

// dateLayouts are tried in order when parsing DateBR. Exports mix layouts
// within a single file; day-first forms are tried before ISO ones.
var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2006-01-02",
	"2006/01/02",
	"02/01/2006 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// Clean turns a raw purchase export into typed transactions. A row survives
// only if every non-exempt field is present, its date parses, and all four
// numeric fields parse; everything else is dropped without signal. Mold and
// quality are exempt from the completeness rule and stringified with the
// "nan" placeholder when absent. Variance is derived last.
func Clean(t *dataset.Table) []Transaction {
	qtyInvoiced := ColQtyInvoiced
	if t.Col(qtyInvoiced) < 0 {
		qtyInvoiced = ColQtyInvoicedASCII
	}

	out := make([]Transaction, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		tx := Transaction{
			BundleID:     t.Cell(i, ColBundleID),
			Article:      t.Cell(i, ColArticle),
			SupplierCode: t.Cell(i, ColSupplierCode),
			SupplierName: t.Cell(i, ColSupplierName),
			Family:       t.Cell(i, ColFamily),
			Boat:         t.Cell(i, ColBoat),
		}
		if missing(tx.BundleID) || missing(tx.Article) || missing(tx.SupplierCode) ||
			missing(tx.SupplierName) || missing(tx.Family) || missing(tx.Boat) {
			continue
		}

		date, ok := parseDate(t.Cell(i, ColDate))
		if !ok {
			continue
		}
		tx.Date = date

		var numOK bool
		if tx.QuantityReceived, numOK = parseFloat(t.Cell(i, ColQtyReceived)); !numOK {
			continue
		}
		if tx.QuantityInvoiced, numOK = parseFloat(t.Cell(i, qtyInvoiced)); !numOK {
			continue
		}
		if tx.UnitPrice, numOK = parseFloat(t.Cell(i, ColUnitPrice)); !numOK {
			continue
		}
		if tx.Amount, numOK = parseFloat(t.Cell(i, ColAmount)); !numOK {
			continue
		}

		tx.Quality = stringOrNaN(t.Cell(i, ColQuality))
		tx.Mold = stringOrNaN(t.Cell(i, ColMold))

		tx.Variance = tx.QuantityReceived - tx.QuantityInvoiced
		out = append(out, tx)
	}
	return out
}

func missing(s string) bool {
	return strings.TrimSpace(s) == ""
}

// stringOrNaN forces a value to its string representation, turning a missing
// value into the literal "nan". The placeholder is surprising but it is what
// downstream tables and filters have always matched against, so it is kept
// as a single named policy.
func stringOrNaN(s string) string {
	if missing(s) {
		return "nan"
	}
	return s
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
