package dashboard

import (
	"reflect"
	"testing"

	"github.com/selhani/achats-analytics/internal/pipeline"
)

func purchase(article, supplier string, amount, qtyRecv, qtyInv float64) pipeline.Transaction {
	return pipeline.Transaction{
		Article:          article,
		SupplierCode:     supplier,
		Amount:           amount,
		QuantityReceived: qtyRecv,
		QuantityInvoiced: qtyInv,
	}
}

func TestAggregate_ChartSeries(t *testing.T) {
	txs := []pipeline.Transaction{
		purchase("A", "S1", 100, 5, 5),
		purchase("A", "S1", 50, 3, 2),
	}

	s := Aggregate(txs, txs, nil)

	if want := (Series{Labels: []string{"A"}, Values: []float64{150}}); !reflect.DeepEqual(s.RevenueByArticle, want) {
		t.Errorf("RevenueByArticle = %+v, want %+v", s.RevenueByArticle, want)
	}
	// |5-5| + |3-2| = 1
	if want := (Series{Labels: []string{"S1"}, Values: []float64{1}}); !reflect.DeepEqual(s.VarianceBySupplier, want) {
		t.Errorf("VarianceBySupplier = %+v, want %+v", s.VarianceBySupplier, want)
	}
	if want := (Series{Labels: []string{"A"}, Values: []float64{8}}); !reflect.DeepEqual(s.QuantityByArticle, want) {
		t.Errorf("QuantityByArticle = %+v, want %+v", s.QuantityByArticle, want)
	}
}

func TestAggregate_KeyOrderIsFirstSeen(t *testing.T) {
	txs := []pipeline.Transaction{
		purchase("B", "S2", 10, 1, 1),
		purchase("A", "S1", 20, 1, 1),
		purchase("B", "S1", 30, 1, 1),
	}

	s := Aggregate(txs, txs, nil)

	if want := []string{"B", "A"}; !reflect.DeepEqual(s.RevenueByArticle.Labels, want) {
		t.Errorf("article order = %v, want %v", s.RevenueByArticle.Labels, want)
	}
	if want := []string{"S2", "S1"}; !reflect.DeepEqual(s.VarianceBySupplier.Labels, want) {
		t.Errorf("supplier order = %v, want %v", s.VarianceBySupplier.Labels, want)
	}
}

func TestAggregate_Deterministic(t *testing.T) {
	txs := []pipeline.Transaction{
		purchase("A", "S1", 100, 5, 4),
		purchase("B", "S2", 50, 3, 3),
	}
	bp := []BPRow{
		{SupplierCode: "S1", TotalPaid: 10, QuantityVariance: 2},
		{SupplierCode: "S2", TotalReceived: 20, AmountVariance: 1},
	}

	first := Aggregate(txs, txs, bp)
	for i := 0; i < 10; i++ {
		if got := Aggregate(txs, txs, bp); !reflect.DeepEqual(got, first) {
			t.Fatalf("Aggregate is not deterministic: %+v != %+v", got, first)
		}
	}
}

func TestAggregate_BPRows(t *testing.T) {
	bp := []BPRow{
		{SupplierCode: "S1", TotalPaid: 100, TotalReceived: 90, TotalInvoiced: 95, QuantityVariance: 2, AmountVariance: 5},
		{SupplierCode: "", QuantityVariance: 3},
		{SupplierCode: "S1", TotalPaid: 50, QuantityVariance: 1},
	}

	s := Aggregate(nil, nil, bp)

	want := Series{Labels: []string{"S1", "NA"}, Values: []float64{3, 3}}
	if !reflect.DeepEqual(s.BPVarianceBySupplier, want) {
		t.Errorf("BPVarianceBySupplier = %+v, want %+v", s.BPVarianceBySupplier, want)
	}

	wantTotals := Totals{Paid: 150, Received: 90, Invoiced: 95, AmountVariance: 5, QuantityVariance: 6}
	if s.Totals != wantTotals {
		t.Errorf("Totals = %+v, want %+v", s.Totals, wantTotals)
	}
}

func TestAggregate_EmptyInputs(t *testing.T) {
	s := Aggregate(nil, nil, nil)

	if len(s.RevenueByArticle.Labels) != 0 || len(s.BPVarianceBySupplier.Labels) != 0 {
		t.Errorf("empty input should give empty series, got %+v", s)
	}
	if s.Totals != (Totals{}) {
		t.Errorf("empty bp rows should give zero totals, got %+v", s.Totals)
	}
	if s.AmountMin != 0 || s.AmountMax != 0 {
		t.Errorf("empty set amount range = (%v, %v), want (0, 0)", s.AmountMin, s.AmountMax)
	}
}

func TestAggregate_AmountRangeUsesUnfilteredSet(t *testing.T) {
	filtered := []pipeline.Transaction{purchase("A", "S1", 500, 1, 1)}
	all := []pipeline.Transaction{
		purchase("A", "S1", 500, 1, 1),
		purchase("B", "S2", 20, 1, 1),
		purchase("C", "S3", 900, 1, 1),
	}

	s := Aggregate(filtered, all, nil)

	if s.AmountMin != 20 {
		t.Errorf("AmountMin = %v, want 20", s.AmountMin)
	}
	if s.AmountMax != 1000 {
		t.Errorf("AmountMax = %v, want 1000 (max + 100)", s.AmountMax)
	}
}
