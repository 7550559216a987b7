package report

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/selhani/achats-analytics/internal/pipeline"
)

func purchase(article string, amount, qtyRecv float64) pipeline.Transaction {
	return pipeline.Transaction{Article: article, Amount: amount, QuantityReceived: qtyRecv}
}

func TestBuildSummary_TopThreeByQuantity(t *testing.T) {
	now := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	txs := []pipeline.Transaction{
		purchase("A", 100, 5),
		purchase("B", 50, 20),
		purchase("C", 30, 8),
		purchase("D", 10, 1),
		purchase("A", 25, 7),
	}

	s := BuildSummary(now, txs)

	if s.TotalAmount != 215 {
		t.Errorf("TotalAmount = %v, want 215", s.TotalAmount)
	}
	want := []ArticleQuantity{
		{Article: "B", Quantity: 20},
		{Article: "A", Quantity: 12},
		{Article: "C", Quantity: 8},
	}
	if !reflect.DeepEqual(s.TopArticles, want) {
		t.Errorf("TopArticles = %v, want %v", s.TopArticles, want)
	}
	if !s.GeneratedAt.Equal(now) {
		t.Errorf("GeneratedAt = %v, want %v", s.GeneratedAt, now)
	}
}

func TestBuildSummary_FewerThanThreeArticles(t *testing.T) {
	s := BuildSummary(time.Now(), []pipeline.Transaction{purchase("A", 10, 2)})
	if len(s.TopArticles) != 1 {
		t.Errorf("TopArticles = %v, want single entry", s.TopArticles)
	}
}

func TestBuildSummary_TiesKeepFirstSeenOrder(t *testing.T) {
	txs := []pipeline.Transaction{
		purchase("B", 1, 5),
		purchase("A", 1, 5),
	}
	s := BuildSummary(time.Now(), txs)
	if s.TopArticles[0].Article != "B" {
		t.Errorf("tie broken against first-seen order: %v", s.TopArticles)
	}
}

func TestBuildSummary_Empty(t *testing.T) {
	s := BuildSummary(time.Now(), nil)
	if s.TotalAmount != 0 || len(s.TopArticles) != 0 {
		t.Errorf("empty input should give zero summary, got %+v", s)
	}
}

type mockProvider struct {
	txs []pipeline.Transaction
	err error
}

func (m *mockProvider) AllTransactions(ctx context.Context) ([]pipeline.Transaction, error) {
	return m.txs, m.err
}

type mockRenderer struct {
	rendered *Summary
}

func (m *mockRenderer) Render(ctx context.Context, s Summary) ([]byte, error) {
	m.rendered = &s
	return []byte("doc"), nil
}

type mockDeliverer struct {
	subject    string
	attachment []byte
}

func (m *mockDeliverer) Deliver(ctx context.Context, subject string, attachment []byte) error {
	m.subject = subject
	m.attachment = attachment
	return nil
}

func TestRun(t *testing.T) {
	provider := &mockProvider{txs: []pipeline.Transaction{purchase("A", 40, 3)}}
	renderer := &mockRenderer{}
	deliverer := &mockDeliverer{}

	if err := Run(context.Background(), provider, renderer, deliverer); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if renderer.rendered == nil || renderer.rendered.TotalAmount != 40 {
		t.Errorf("renderer got %+v, want total 40", renderer.rendered)
	}
	if deliverer.subject != "Rapport des Achats" {
		t.Errorf("subject = %q", deliverer.subject)
	}
	if string(deliverer.attachment) != "doc" {
		t.Errorf("attachment = %q, want rendered doc", deliverer.attachment)
	}
}

func TestRun_ProviderError(t *testing.T) {
	provider := &mockProvider{err: errors.New("connection refused")}
	err := Run(context.Background(), provider, &mockRenderer{}, &mockDeliverer{})
	if err == nil {
		t.Fatal("want error when provider fails")
	}
}
