package metrics

import (
	"context"
	"net/http"
	"time"

	"autoparts-storefront/quickorder"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg             *prometheus.Registry
	Validations     *prometheus.CounterVec
	Lines           *prometheus.CounterVec
	CartInsertions  prometheus.Counter
	QuotesSaved     prometheus.Counter
	StaleResponses  prometheus.Counter
	BackendRequests *prometheus.HistogramVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	validations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_quick_order_validations_total",
		Help: "Completed quick order validations by tab.",
	}, []string{"tab"})
	lines := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_quick_order_lines_total",
		Help: "Validated quick order lines by outcome.",
	}, []string{"outcome"})
	cartInsertions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_cart_insertions_total",
		Help: "Cart lines inserted.",
	})
	quotesSaved := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_quotes_saved_total",
		Help: "Quotes saved from quick order.",
	})
	stale := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_stale_responses_total",
		Help: "Validation responses dropped because a newer request was issued.",
	})
	backend := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_backend_request_seconds",
		Help:    "Latency of calls to the storefront backend.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	r.MustRegister(validations, lines, cartInsertions, quotesSaved, stale, backend)
	return &Registry{
		reg:             r,
		Validations:     validations,
		Lines:           lines,
		CartInsertions:  cartInsertions,
		QuotesSaved:     quotesSaved,
		StaleResponses:  stale,
		BackendRequests: backend,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

// ObserveBackend records the latency of one backend call
func (r *Registry) ObserveBackend(endpoint string, d time.Duration) {
	r.BackendRequests.WithLabelValues(endpoint).Observe(d.Seconds())
}

// CartAdded counts lines inserted into any cart
func (r *Registry) CartAdded(lines int) {
	r.CartInsertions.Add(float64(lines))
}

// Record implements quickorder.Recorder
func (r *Registry) Record(ctx context.Context, e quickorder.Event) {
	switch e.Type {
	case quickorder.EventValidated:
		r.Validations.WithLabelValues(string(e.Tab)).Inc()
		r.Lines.WithLabelValues("found").Add(float64(e.Found - e.Obsolete))
		r.Lines.WithLabelValues("obsolete").Add(float64(e.Obsolete))
		r.Lines.WithLabelValues("missing").Add(float64(e.Missing))
	case quickorder.EventQuoteSaved:
		r.QuotesSaved.Inc()
	case quickorder.EventStaleResponse:
		r.StaleResponses.Inc()
	}
}

var _ quickorder.Recorder = (*Registry)(nil)
