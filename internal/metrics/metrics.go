package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the portal.
type Metrics struct {
	Registry          *prometheus.Registry
	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	SearchesTotal     *prometheus.CounterVec
	SearchResults     prometheus.Histogram
	LoginsTotal       *prometheus.CounterVec
	ReservationsTotal *prometheus.CounterVec
	CatalogBooks      prometheus.Gauge
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_http_requests_total",
			Help: "Total HTTP requests by route and status code.",
		},
		[]string{"route", "code"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	searches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_searches_total",
			Help: "Catalog searches by cache outcome.",
		},
		[]string{"cache"},
	)
	searchResults := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "portal_search_results",
			Help:    "Number of books returned per search.",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
	)
	logins := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_logins_total",
			Help: "Login attempts by role and outcome.",
		},
		[]string{"role", "outcome"},
	)
	reservations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_reservations_total",
			Help: "Reservations by status.",
		},
		[]string{"status"},
	)
	catalogBooks := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "portal_catalog_books",
			Help: "Number of titles in the catalog.",
		},
	)

	registry.MustRegister(requests, requestDuration, searches, searchResults, logins, reservations, catalogBooks)

	return &Metrics{
		Registry:          registry,
		RequestsTotal:     requests,
		RequestDuration:   requestDuration,
		SearchesTotal:     searches,
		SearchResults:     searchResults,
		LoginsTotal:       logins,
		ReservationsTotal: reservations,
		CatalogBooks:      catalogBooks,
	}
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, code).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// ObserveSearch records a search and whether it was served from cache.
func (m *Metrics) ObserveSearch(cacheHit bool, results int) {
	if m == nil {
		return
	}
	outcome := "miss"
	if cacheHit {
		outcome = "hit"
	}
	m.SearchesTotal.WithLabelValues(outcome).Inc()
	m.SearchResults.Observe(float64(results))
}

// IncLogin counts a login attempt.
func (m *Metrics) IncLogin(role, outcome string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(role, outcome).Inc()
}

// IncReservation counts a reservation by status.
func (m *Metrics) IncReservation(status string) {
	if m == nil {
		return
	}
	m.ReservationsTotal.WithLabelValues(status).Inc()
}

// SetCatalogSize updates the catalog gauge.
func (m *Metrics) SetCatalogSize(n int) {
	if m == nil {
		return
	}
	m.CatalogBooks.Set(float64(n))
}
