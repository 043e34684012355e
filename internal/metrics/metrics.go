package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/AdamBeresnev/op-chess/internal/chess"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "op_chess"

// Metrics implements service.Recorder on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	statusChanges *prometheus.CounterVec
	rounds        *prometheus.CounterVec
	results       *prometheus.CounterVec
	inscriptions  *prometheus.CounterVec
	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tournament_status_changes_total",
			Help:      "Tournament status transitions.",
		}, []string{"from", "to"}),
		rounds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_generated_total",
			Help:      "Rounds paired, by tournament format.",
		}, []string{"format"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_recorded_total",
			Help:      "Match results recorded.",
		}, []string{"result"}),
		inscriptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inscription_changes_total",
			Help:      "Players joining, leaving or being removed from tournaments.",
		}, []string{"op"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"method", "route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.statusChanges,
		m.rounds,
		m.results,
		m.inscriptions,
		m.requests,
		m.latency,
	)
	return m
}

func (m *Metrics) StatusChanged(from, to chess.TournamentStatus) {
	m.statusChanges.WithLabelValues(string(from), string(to)).Inc()
}

func (m *Metrics) RoundGenerated(format chess.Format) {
	m.rounds.WithLabelValues(string(format)).Inc()
}

func (m *Metrics) ResultRecorded(result chess.MatchResult) {
	m.results.WithLabelValues(string(result)).Inc()
}

func (m *Metrics) InscriptionChanged(op string) {
	m.inscriptions.WithLabelValues(op).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Instrument records every request under its chi route pattern so ids do not
// explode label cardinality.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.latency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
