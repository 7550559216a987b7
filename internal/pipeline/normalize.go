package pipeline

import (
	"strconv"

	"github.com/selhani/achats-analytics/internal/dataset"
)

// Tables holds the three artifacts of one normalization run. A run fully
// replaces whatever a previous run produced; the rows are related only by
// matching article / supplier code values, never by enforced keys.
type Tables struct {
	Transactions []Transaction
	Suppliers    []Supplier
	Articles     []Article
}

// Normalize projects cleaned transactions into the transaction, supplier and
// article tables. Reference tables are deduplicated by exact pair and keep
// first-seen order; article revenue is summed over the full transaction set,
// not the deduplicated rows.
func Normalize(txs []Transaction) Tables {
	t := Tables{Transactions: txs}

	seenSupplier := make(map[Supplier]bool)
	type articleKey struct{ name, family string }
	seenArticle := make(map[articleKey]bool)
	revenue := make(map[string]float64)
	hasRevenue := make(map[string]bool)

	for _, tx := range txs {
		s := Supplier{Code: tx.SupplierCode, Name: tx.SupplierName}
		if !seenSupplier[s] {
			seenSupplier[s] = true
			t.Suppliers = append(t.Suppliers, s)
		}
		k := articleKey{name: tx.Article, family: tx.Family}
		if !seenArticle[k] {
			seenArticle[k] = true
			t.Articles = append(t.Articles, Article{Name: tx.Article, Family: tx.Family})
		}
		revenue[tx.Article] += tx.Amount
		hasRevenue[tx.Article] = true
	}

	for i := range t.Articles {
		if hasRevenue[t.Articles[i].Name] {
			ca := revenue[t.Articles[i].Name]
			t.Articles[i].Revenue = &ca
		}
	}
	return t
}

// TransactionColumns is the fixed output order of the transaction artifact.
// Consumers read it by position as well as by name, so the order is part of
// the contract.
var TransactionColumns = []string{
	ColBundleID, ColArticle, ColDate, ColSupplierCode, ColBoat,
	ColQtyReceived, ColQtyInvoicedASCII, ColQuality, ColMold,
	ColUnitPrice, ColAmount,
}

// SupplierColumns is the fixed output order of the supplier artifact.
var SupplierColumns = []string{ColSupplierCode, ColSupplierName}

// ArticleColumns is the fixed output order of the article artifact.
var ArticleColumns = []string{ColArticle, ColFamily, ColRevenue}

const dateFormat = "2006-01-02"

// TransactionTable renders the transaction rows as a tabular artifact.
func (t Tables) TransactionTable() *dataset.Table {
	out := dataset.New("Achats", TransactionColumns)
	for _, tx := range t.Transactions {
		out.AppendRow([]string{
			tx.BundleID, tx.Article, tx.Date.Format(dateFormat),
			tx.SupplierCode, tx.Boat,
			formatFloat(tx.QuantityReceived), formatFloat(tx.QuantityInvoiced),
			tx.Quality, tx.Mold,
			formatFloat(tx.UnitPrice), formatFloat(tx.Amount),
		})
	}
	return out
}

// SupplierTable renders the supplier rows as a tabular artifact.
func (t Tables) SupplierTable() *dataset.Table {
	out := dataset.New("Fournisseurs", SupplierColumns)
	for _, s := range t.Suppliers {
		out.AppendRow([]string{s.Code, s.Name})
	}
	return out
}

// ArticleTable renders the article rows as a tabular artifact. A nil
// revenue becomes an empty cell, never "0".
func (t Tables) ArticleTable() *dataset.Table {
	out := dataset.New("Produits", ArticleColumns)
	for _, a := range t.Articles {
		ca := ""
		if a.Revenue != nil {
			ca = formatFloat(*a.Revenue)
		}
		out.AppendRow([]string{a.Name, a.Family, ca})
	}
	return out
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
