// Package report builds the simplified weekly purchase summary that is
// rendered to PDF and emailed. Rendering and delivery are external
// collaborators; this package only computes the figures.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/selhani/achats-analytics/internal/pipeline"
)

// ArticleQuantity is one line of the top-articles ranking.
type ArticleQuantity struct {
	Article  string
	Quantity float64
}

// Summary is the content of one report run.
type Summary struct {
	GeneratedAt time.Time
	TotalAmount float64
	TopArticles []ArticleQuantity
}

// topCount is how many articles the report ranks.
const topCount = 3

// BuildSummary computes the report figures over a transaction set: the total
// purchase amount and the top articles by received quantity. Ties keep
// first-seen order.
func BuildSummary(now time.Time, txs []pipeline.Transaction) Summary {
	s := Summary{GeneratedAt: now}

	var byArticle []ArticleQuantity
	index := make(map[string]int)
	for _, tx := range txs {
		s.TotalAmount += tx.Amount
		if i, ok := index[tx.Article]; ok {
			byArticle[i].Quantity += tx.QuantityReceived
		} else {
			index[tx.Article] = len(byArticle)
			byArticle = append(byArticle, ArticleQuantity{Article: tx.Article, Quantity: tx.QuantityReceived})
		}
	}

	sort.SliceStable(byArticle, func(i, j int) bool {
		return byArticle[i].Quantity > byArticle[j].Quantity
	})
	if len(byArticle) > topCount {
		byArticle = byArticle[:topCount]
	}
	s.TopArticles = byArticle
	return s
}

// Provider supplies the transaction set the report covers.
type Provider interface {
	AllTransactions(ctx context.Context) ([]pipeline.Transaction, error)
}

// Renderer turns a summary into a document, typically a PDF.
type Renderer interface {
	Render(ctx context.Context, s Summary) ([]byte, error)
}

// Deliverer sends a rendered document, typically as an email attachment.
type Deliverer interface {
	Deliver(ctx context.Context, subject string, attachment []byte) error
}

// Run executes one report cycle: fetch, summarize, render, deliver.
func Run(ctx context.Context, provider Provider, renderer Renderer, deliverer Deliverer) error {
	txs, err := provider.AllTransactions(ctx)
	if err != nil {
		return fmt.Errorf("report: fetch transactions: %w", err)
	}

	summary := BuildSummary(time.Now(), txs)

	doc, err := renderer.Render(ctx, summary)
	if err != nil {
		return fmt.Errorf("report: render: %w", err)
	}

	if err := deliverer.Deliver(ctx, "Rapport des Achats", doc); err != nil {
		return fmt.Errorf("report: deliver: %w", err)
	}
	return nil
}

// LogDeliverer logs the report instead of sending it. Used for local runs
// where no mail relay is configured.
type LogDeliverer struct {
	Log zerolog.Logger
}

func (d LogDeliverer) Deliver(ctx context.Context, subject string, attachment []byte) error {
	d.Log.Info().
		Str("subject", subject).
		Int("attachment_bytes", len(attachment)).
		Msg("Report ready (no deliverer configured)")
	return nil
}
