// Package metrics owns the Prometheus collectors of the API server.
// Everything is registered on a dedicated registry, never the global one.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/kiranshivaraju/mockview/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpLatency         *prometheus.HistogramVec
	interviewsCreated   *prometheus.CounterVec
	answersSaved        prometheus.Counter
	interviewsCompleted prometheus.Counter
	feedbackRating      prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "http_requests_total", Help: "Count of HTTP requests"},
			[]string{"path", "method", "status"},
		),
		httpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Latency of HTTP requests",
				Buckets: prometheus.DefBuckets,
			}, []string{"path", "method"},
		),
		interviewsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "interviews_created_total", Help: "Interviews created, by type"},
			[]string{"type"},
		),
		answersSaved: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "answers_saved_total", Help: "Answers written to interviews"},
		),
		interviewsCompleted: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "interviews_completed_total", Help: "Interviews that received feedback"},
		),
		feedbackRating: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "interview_feedback_rating",
			Help:    "Distribution of feedback ratings",
			Buckets: prometheus.LinearBuckets(0, 1, 11),
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpLatency,
		m.interviewsCreated, m.answersSaved, m.interviewsCompleted, m.feedbackRating,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the exposition format for the dedicated registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveRequest(path, method string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(path, method).Observe(elapsed.Seconds())
}

func (m *Metrics) InterviewCreated(t models.InterviewType) {
	m.interviewsCreated.WithLabelValues(string(t)).Inc()
}

func (m *Metrics) AnswerSaved() {
	m.answersSaved.Inc()
}

func (m *Metrics) InterviewCompleted(rating int) {
	m.interviewsCompleted.Inc()
	m.feedbackRating.Observe(float64(rating))
}
