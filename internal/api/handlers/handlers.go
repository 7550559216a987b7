// Package handlers wires the dashboard API. The routes stay thin: filter
// parsing and JSON shaping here, all figures in internal/dashboard.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/selhani/achats-analytics/internal/api/middleware"
	"github.com/selhani/achats-analytics/internal/dashboard"
	"github.com/selhani/achats-analytics/internal/infra/postgres"
	"github.com/selhani/achats-analytics/internal/jobs"
	"github.com/selhani/achats-analytics/internal/pipeline"
)

// QueryProvider is the slice of the store the dashboard reads.
type QueryProvider interface {
	FilteredTransactions(ctx context.Context, f postgres.Filter) ([]pipeline.Transaction, error)
	AllTransactions(ctx context.Context) ([]pipeline.Transaction, error)
	BPRows(ctx context.Context, f postgres.Filter) ([]dashboard.BPRow, error)
}

// DashboardHandler serves the aggregated chart payloads.
type DashboardHandler struct {
	provider QueryProvider
	log      zerolog.Logger
}

// NewDashboardHandler creates a dashboard handler over a query provider.
func NewDashboardHandler(provider QueryProvider, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{provider: provider, log: log}
}

// chartJSON is one bar chart: ordered categories, values and colors.
type chartJSON struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Colors []string  `json:"colors"`
}

func chart(s dashboard.Series) chartJSON {
	labels := s.Labels
	if labels == nil {
		labels = []string{}
	}
	values := s.Values
	if values == nil {
		values = []float64{}
	}
	return chartJSON{Labels: labels, Values: values, Colors: dashboard.Colors(len(labels))}
}

// GetDashboard handles GET /api/dashboard.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := parseFilter(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	filtered, err := h.provider.FilteredTransactions(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query transactions")
		return
	}
	all, err := h.provider.AllTransactions(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query full transaction set")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query transactions")
		return
	}
	bp, err := h.provider.BPRows(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query reconciliation rows")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query reconciliation rows")
		return
	}

	summary := dashboard.Aggregate(filtered, all, bp)

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"revenue_by_article":      chart(summary.RevenueByArticle),
		"variance_by_supplier":    chart(summary.VarianceBySupplier),
		"quantity_by_article":     chart(summary.QuantityByArticle),
		"bp_variance_by_supplier": chart(summary.BPVarianceBySupplier),
		"totals": map[string]float64{
			"paid":              summary.Totals.Paid,
			"received":          summary.Totals.Received,
			"invoiced":          summary.Totals.Invoiced,
			"amount_variance":   summary.Totals.AmountVariance,
			"quantity_variance": summary.Totals.QuantityVariance,
		},
		"amount_range": map[string]float64{
			"min": summary.AmountMin,
			"max": summary.AmountMax,
		},
	})
}

func parseFilter(r *http.Request) (postgres.Filter, error) {
	q := r.URL.Query()
	f := postgres.Filter{
		Supplier: q.Get("fournisseur"),
		Article:  q.Get("article"),
	}
	if v := q.Get("date_from"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, err
		}
		f.DateFrom = &d
	}
	if v := q.Get("date_to"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, err
		}
		f.DateTo = &d
	}
	if v := q.Get("montant_min"); v != "" {
		m, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, err
		}
		f.AmountMin = &m
	}
	if v := q.Get("montant_max"); v != "" {
		m, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, err
		}
		f.AmountMax = &m
	}
	return f, nil
}

// IngestHandler accepts ingestion requests and hands them to the queue.
type IngestHandler struct {
	publisher jobs.Publisher
	store     jobs.JobStore
	log       zerolog.Logger
}

// NewIngestHandler creates an ingest handler.
func NewIngestHandler(publisher jobs.Publisher, store jobs.JobStore, log zerolog.Logger) *IngestHandler {
	return &IngestHandler{publisher: publisher, store: store, log: log}
}

// CreateIngest handles POST /api/ingest.
func (h *IngestHandler) CreateIngest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SourceURI string `json:"source_uri"`
		Latin1    bool   `json:"latin1"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SourceURI == "" {
		middleware.WriteError(w, http.StatusBadRequest, "source_uri is required")
		return
	}

	job := &jobs.IngestExportJob{SourceURI: req.SourceURI, Latin1: req.Latin1}
	if err := h.publisher.PublishIngestExport(r.Context(), job); err != nil {
		h.log.Error().Err(err).Str("source_uri", req.SourceURI).Msg("Failed to enqueue ingest job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue job")
		return
	}

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// GetJob handles GET /api/jobs/{id}.
func (h *IngestHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, job)
}
