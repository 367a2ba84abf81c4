// Package metrics exports ParameterCache activity as Prometheus metrics.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/agentuity/go-paramcache/cache"
	"github.com/agentuity/go-paramcache/logger"
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "paramcache"

// Collector is a cache.Observer that records cache activity in Prometheus.
type Collector struct {
	Hits         prometheus.Counter
	Misses       *prometheus.CounterVec
	Fetches      prometheus.Counter
	FetchErrors  *prometheus.CounterVec
	Evictions    prometheus.Counter
	FetchLatency prometheus.Histogram
}

var _ cache.Observer = (*Collector)(nil)

// NewCollector registers the cache metrics on reg under namespace. An empty
// namespace uses DefaultNamespace. It panics if the metrics are already
// registered on reg.
func NewCollector(reg prometheus.Registerer, namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	f := promauto.With(reg)
	return &Collector{
		Hits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hits_total",
			Help:      "Lookups answered from a fresh cached value",
		}),
		Misses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "misses_total",
			Help:      "Lookups that went to the source, by reason",
		}, []string{"reason"}),
		Fetches: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Successful fetches from the source",
		}),
		FetchErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Failed fetches from the source, by kind",
		}, []string{"kind"}),
		Evictions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evictions_total",
			Help:      "Entries removed to make room for new ones",
		}),
		FetchLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time spent waiting on the source",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
	}
}

func errorKind(err error) string {
	switch {
	case cache.IsNotFound(err):
		return "not_found"
	case cache.IsTransport(err):
		return "transport"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "context"
	}
	return "other"
}

func (c *Collector) Hit(string) {
	c.Hits.Inc()
}

func (c *Collector) Miss(_ string, reason cache.MissReason) {
	c.Misses.WithLabelValues(string(reason)).Inc()
}

func (c *Collector) Fetched(_ string, elapsed time.Duration) {
	c.Fetches.Inc()
	c.FetchLatency.Observe(elapsed.Seconds())
}

func (c *Collector) FetchFailed(_ string, err error, elapsed time.Duration) {
	c.FetchErrors.WithLabelValues(errorKind(err)).Inc()
	c.FetchLatency.Observe(elapsed.Seconds())
}

func (c *Collector) Evicted(string) {
	c.Evictions.Inc()
}

// Server exposes /metrics and /health over HTTP.
type Server struct {
	server *http.Server
	logger logger.Logger
}

// NewServer returns a Server for gatherer listening on addr.
func NewServer(addr string, gatherer prometheus.Gatherer, log logger.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: log.WithPrefix("[metrics]"),
	}
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// StartAsync serves in a goroutine until Shutdown is called.
func (s *Server) StartAsync() {
	go func() {
		s.logger.Debug("listening on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server: %s", err)
		}
	}()
}

// Shutdown stops the server, waiting for in-flight scrapes until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
