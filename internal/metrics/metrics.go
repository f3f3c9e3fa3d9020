// Package metrics exposes notifier counters over Prometheus plus the
// admin HTTP surface they are scraped from.
package metrics

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the notifier loop's counters.
type Metrics struct {
	SyncCycles         prometheus.Counter
	UnseenTransactions prometheus.Counter
	ChunksSent         prometheus.Counter
	DispatchErrors     prometheus.Counter
}

// New creates the counters under the given namespace.
func New(namespace string) *Metrics {
	return &Metrics{
		SyncCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_cycles_total",
			Help:      "Total number of completed notifier cycles",
		}),
		UnseenTransactions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unseen_transactions_total",
			Help:      "Total number of transactions notified for the first time",
		}),
		ChunksSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_sent_total",
			Help:      "Total number of message chunks dispatched (per channel)",
		}),
		DispatchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_errors_total",
			Help:      "Total number of failed chunk sends",
		}),
	}
}

// Register registers all counters with a Prometheus registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.SyncCycles,
		m.UnseenTransactions,
		m.ChunksSent,
		m.DispatchErrors,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Handler returns the admin HTTP handler: /healthz and /metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return r
}
