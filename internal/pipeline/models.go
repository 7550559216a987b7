package pipeline

import (
	"time"
)

// Source column names, as exported by the purchasing ERP. The invoiced
// quantity header is accented in most exports; cleaning accepts the ASCII
// spelling too since both circulate.
const (
	ColBundleID         = "NumBonPese"
	ColSupplierCode     = "CodeFournisseur"
	ColSupplierName     = "DesignationFournisseur"
	ColArticle          = "DesignationArticle"
	ColFamily           = "Famille"
	ColBoat             = "NomBateau"
	ColDate             = "DateBR"
	ColQtyReceived      = "QteRecue"
	ColQtyInvoiced      = "QteFacturée"
	ColQtyInvoicedASCII = "QteFacturee"
	ColQuality          = "Qualite"
	ColMold             = "Moule"
	ColUnitPrice        = "PU"
	ColAmount           = "MontantAchat"
	ColRevenue          = "CA"
)

// RawColumns lists the columns a purchase export must carry. A source
// missing any of them fails ingestion with a dataset.SchemaError.
// The invoiced quantity column is checked separately because of its two
// header spellings.
func RawColumns() []string {
	return []string{
		ColBundleID, ColSupplierCode, ColSupplierName, ColArticle,
		ColFamily, ColBoat, ColDate, ColQtyReceived,
		ColQuality, ColMold, ColUnitPrice, ColAmount,
	}
}

// Transaction is one cleaned purchase line. Every field except Mold and
// Quality is guaranteed present after cleaning; those two fall back to the
// "nan" placeholder (see stringOrNaN).
type Transaction struct {
	BundleID     string
	Article      string
	Date         time.Time
	SupplierCode string
	SupplierName string
	Family       string
	Boat         string

	QuantityReceived float64
	QuantityInvoiced float64
	Quality          string
	Mold             string
	UnitPrice        float64
	Amount           float64

	// Variance = QuantityReceived - QuantityInvoiced, derived by Clean.
	Variance float64
}

// Supplier is a deduplicated (code, name) reference row.
type Supplier struct {
	Code string
	Name string
}

// Article is a deduplicated (name, family) reference row. Revenue is the
// summed purchase amount over every transaction for that article, and nil
// when no transaction matched; nil and zero are distinct downstream.
type Article struct {
	Name    string
	Family  string
	Revenue *float64
}
