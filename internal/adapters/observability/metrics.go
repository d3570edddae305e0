package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	FetchRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "scraper", Name: "fetch_requests_total", Help: "Source fetches."},
		[]string{"query", "status"},
	)
	FetchLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "scraper", Name: "fetch_duration_seconds",
			Help:    "Source fetch duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)
	ExtractWarnings = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "scraper", Name: "extract_warnings_total", Help: "Skipped/discarded candidates."},
		[]string{"entity"},
	)
	MergeConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "scraper", Name: "merge_conflicts_total", Help: "Field conflicts during merge."},
		[]string{"entity"},
	)
	PrunedRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "scraper", Name: "pruned_total", Help: "Records pruned for unresolved references."},
		[]string{"entity"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "scraper", Name: "cache_events_total", Help: "Raw-response cache hits/misses/sets."},
		[]string{"cache", "event"}, // event: hit|miss|set
	)
)

// Router builds the ops mux: health plus the pipeline collectors.
func Router() http.Handler {
	m := chi.NewRouter()
	m.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	m.Handle("/metrics", MetricsHandler(InitRegistry()))
	return m
}

// Serve starts the side ops server (metrics + health) when addr is set.
func Serve(addr string) {
	if addr == "" {
		return // disabled
	}
	m := Router()

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           m,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("ops server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("ops server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(FetchRequests, FetchLatency, ExtractWarnings, MergeConflicts, PrunedRecords, CacheEvents)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveFetch(query string, status int, dur time.Duration) {
	FetchRequests.WithLabelValues(query, strconv.Itoa(status)).Inc()
	FetchLatency.WithLabelValues(query).Observe(dur.Seconds())
}

func ObserveWarning(entity string)  { ExtractWarnings.WithLabelValues(entity).Inc() }
func ObserveConflict(entity string) { MergeConflicts.WithLabelValues(entity).Inc() }
func ObservePruned(entity string)   { PrunedRecords.WithLabelValues(entity).Inc() }

func ObserveCache(cache, event string) { // event: hit|miss|set
	CacheEvents.WithLabelValues(cache, event).Inc()
}
