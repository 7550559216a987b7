package pipeline_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/selhani/achats-analytics/internal/dataset"
	"github.com/selhani/achats-analytics/internal/pipeline"
)

const sampleCSV = `NumBonPese,CodeFournisseur,DesignationFournisseur,DesignationArticle,Famille,NomBateau,DateBR,QteRecue,QteFacturée,Qualite,Moule,PU,MontantAchat
BP-1,S1,Fournisseur Un,Sardine,Poisson,Etoile,2024-01-01,5,5,A,M1,20,100
BP-2,S1,Fournisseur Un,Sardine,Poisson,Etoile,02/01/2024,3,2,A,,16.67,50
BP-3,S2,Fournisseur Deux,Crevette,Crustacé,Lune,2024-01-03,1,1,B,M2,oops,30
`

// MockSink records writes and fails on demand.
type MockSink struct {
	Transactions []pipeline.Transaction
	Suppliers    []pipeline.Supplier
	Articles     []pipeline.Article

	FailSuppliers error
}

func (m *MockSink) WriteTransactions(ctx context.Context, txs []pipeline.Transaction) error {
	m.Transactions = txs
	return nil
}

func (m *MockSink) WriteSuppliers(ctx context.Context, suppliers []pipeline.Supplier) error {
	if m.FailSuppliers != nil {
		return m.FailSuppliers
	}
	m.Suppliers = suppliers
	return nil
}

func (m *MockSink) WriteArticles(ctx context.Context, articles []pipeline.Article) error {
	m.Articles = articles
	return nil
}

// MockFetcher serves fixed bytes per URI.
type MockFetcher struct {
	Data map[string][]byte
}

func (m *MockFetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	data, ok := m.Data[uri]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func TestIngestReader_EndToEnd(t *testing.T) {
	sink := &MockSink{}

	res, err := pipeline.IngestReader(context.Background(), strings.NewReader(sampleCSV), pipeline.Options{}, sink)
	if err != nil {
		t.Fatalf("IngestReader failed: %v", err)
	}

	if res.SourceRows != 3 {
		t.Errorf("SourceRows = %d, want 3", res.SourceRows)
	}
	// BP-3 has a non-numeric unit price and is silently dropped.
	if res.CleanRows != 2 {
		t.Errorf("CleanRows = %d, want 2", res.CleanRows)
	}
	if len(sink.Transactions) != 2 {
		t.Fatalf("sink received %d transactions, want 2", len(sink.Transactions))
	}
	if len(sink.Suppliers) != 1 {
		t.Errorf("sink received %d suppliers, want 1", len(sink.Suppliers))
	}
	if len(sink.Articles) != 1 {
		t.Fatalf("sink received %d articles, want 1", len(sink.Articles))
	}
	if ca := sink.Articles[0].Revenue; ca == nil || *ca != 150 {
		t.Errorf("Sardine revenue = %v, want 150", ca)
	}
	// Row BP-2 left Moule empty; the placeholder must survive to the sink.
	if sink.Transactions[1].Mold != "nan" {
		t.Errorf("Mold = %q, want \"nan\"", sink.Transactions[1].Mold)
	}
}

func TestIngestReader_MissingColumnIsSchemaError(t *testing.T) {
	csv := "NumBonPese,CodeFournisseur\nBP-1,S1\n"
	sink := &MockSink{}

	_, err := pipeline.IngestReader(context.Background(), strings.NewReader(csv), pipeline.Options{}, sink)

	var schemaErr *dataset.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("want SchemaError, got %v", err)
	}
	if sink.Transactions != nil || sink.Suppliers != nil || sink.Articles != nil {
		t.Error("sink was written despite schema error")
	}
}

func TestIngestReader_SinkFailureIsBestEffort(t *testing.T) {
	failing := &MockSink{FailSuppliers: errors.New("connection reset")}
	healthy := &MockSink{}

	res, err := pipeline.IngestReader(context.Background(), strings.NewReader(sampleCSV), pipeline.Options{}, failing, healthy)
	if !errors.Is(err, pipeline.ErrSinkWrite) {
		t.Fatalf("want ErrSinkWrite, got %v", err)
	}

	// The failing sink still got the other two artifacts, and the second
	// sink was not skipped.
	if len(failing.Transactions) != 2 || len(failing.Articles) != 1 {
		t.Error("failing sink should still receive the other artifacts")
	}
	if len(healthy.Suppliers) != 1 {
		t.Error("second sink should be written despite first sink failure")
	}

	if res.Reports[0].Suppliers == nil {
		t.Error("report should record the supplier write failure")
	}
	if res.Reports[0].Transactions != nil || res.Reports[1].Err() != nil {
		t.Error("report should mark successful writes as nil")
	}
}

func TestIngestCSV_FetcherErrors(t *testing.T) {
	fetcher := &MockFetcher{Data: map[string][]byte{}}

	_, err := pipeline.IngestCSV(context.Background(), fetcher, "gs://bucket/missing.csv", pipeline.Options{})
	if err == nil {
		t.Fatal("want error for missing object")
	}
}

func TestIngestCSV_FromFetcher(t *testing.T) {
	fetcher := &MockFetcher{Data: map[string][]byte{
		"gs://bucket/achats.csv": []byte(sampleCSV),
	}}
	sink := &MockSink{}

	res, err := pipeline.IngestCSV(context.Background(), fetcher, "gs://bucket/achats.csv", pipeline.Options{}, sink)
	if err != nil {
		t.Fatalf("IngestCSV failed: %v", err)
	}
	if res.CleanRows != 2 {
		t.Errorf("CleanRows = %d, want 2", res.CleanRows)
	}
}
