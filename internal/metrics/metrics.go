// Package metrics exposes Prometheus collectors for the crawler.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pagesTotal           *prometheus.CounterVec
	fetchErrorsTotal     *prometheus.CounterVec
	observationsInserted prometheus.Counter
	fetchDurationSeconds prometheus.Histogram
	datesProcessedTotal  *prometheus.CounterVec

	once sync.Once
)

// Init registers the collectors. Safe to call multiple times.
func Init() {
	once.Do(func() {
		pagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meteodb_pages_total",
				Help: "Total remote pages fetched, labeled by kind and status code.",
			},
			[]string{"kind", "status"},
		)

		fetchErrorsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meteodb_fetch_errors_total",
				Help: "Total fetch failures, labeled by kind.",
			},
			[]string{"kind"},
		)

		observationsInserted = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "meteodb_observations_inserted_total",
				Help: "Total observation rows persisted.",
			},
		)

		fetchDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "meteodb_fetch_duration_seconds",
				Help:    "Histogram of remote page fetch latencies.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
		)

		datesProcessedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meteodb_dates_processed_total",
				Help: "Total calendar dates processed, labeled by strategy.",
			},
			[]string{"strategy"},
		)
	})
}

// RecordPage counts one fetched page.
func RecordPage(kind string, statusCode int, duration time.Duration) {
	if pagesTotal == nil {
		return
	}
	pagesTotal.WithLabelValues(kind, strconv.Itoa(statusCode)).Inc()
	fetchDurationSeconds.Observe(duration.Seconds())
}

// RecordFetchError counts one failed fetch.
func RecordFetchError(kind string) {
	if fetchErrorsTotal == nil {
		return
	}
	fetchErrorsTotal.WithLabelValues(kind).Inc()
}

// RecordInserted counts persisted observation rows.
func RecordInserted(n int) {
	if observationsInserted == nil {
		return
	}
	observationsInserted.Add(float64(n))
}

// RecordDate counts one fully processed calendar date.
func RecordDate(strategy string) {
	if datesProcessedTotal == nil {
		return
	}
	datesProcessedTotal.WithLabelValues(strategy).Inc()
}

// Handler returns a router exposing /metrics and /healthz. Long init runs
// mount this on a side port so operators can watch progress.
func Handler() http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}
