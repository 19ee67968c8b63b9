package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/koperasi-lestari/bichecking/internal/core/domain"
)

type Metrics struct {
	service  string
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	verdictsTotal      *prometheus.CounterVec
	similarityScore    *prometheus.HistogramVec
	analysisDuration   *prometheus.HistogramVec
	extractionFailures *prometheus.CounterVec
}

func New(service string) *Metrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bicheck",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bicheck",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "bicheck",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	verdictsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bicheck",
			Subsystem: "analysis",
			Name:      "verdicts_total",
			Help:      "Total issued verdicts by label.",
		},
		[]string{"service", "status"},
	)
	similarityScore := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bicheck",
			Subsystem: "analysis",
			Name:      "similarity_score",
			Help:      "Best cosine similarity against the reference corpus.",
			Buckets:   []float64{0.02, 0.05, 0.08, 0.15, 0.3, 0.5, 0.7, 0.9},
		},
		[]string{"service"},
	)
	analysisDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bicheck",
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Analysis pipeline duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	extractionFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bicheck",
			Subsystem: "analysis",
			Name:      "extraction_failures_total",
			Help:      "Total document payloads whose text extraction failed.",
		},
		[]string{"service", "format"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		verdictsTotal,
		similarityScore,
		analysisDuration,
		extractionFailures,
	)

	return &Metrics{
		service:            service,
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		verdictsTotal:      verdictsTotal,
		similarityScore:    similarityScore,
		analysisDuration:   analysisDuration,
		extractionFailures: extractionFailures,
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			m.service,
			r.Method,
			r.URL.Path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(m.service, r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) RecordVerdict(status domain.VerdictLabel) {
	m.verdictsTotal.WithLabelValues(m.service, string(status)).Inc()
}

func (m *Metrics) RecordSimilarity(score float64) {
	m.similarityScore.WithLabelValues(m.service).Observe(score)
}

func (m *Metrics) RecordAnalysisDuration(d time.Duration) {
	m.analysisDuration.WithLabelValues(m.service).Observe(d.Seconds())
}

func (m *Metrics) RecordExtractionFailure(format string) {
	if format == "" {
		format = "unknown"
	}
	m.extractionFailures.WithLabelValues(m.service, format).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
