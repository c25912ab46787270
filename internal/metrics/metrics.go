package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the archive services.
type Metrics struct {
	Searches            *prometheus.CounterVec
	SearchResults       prometheus.Histogram
	MembershipFallbacks prometheus.Counter
	StoreErrors         *prometheus.CounterVec
	DocumentWrites      *prometheus.CounterVec
	LoginFailures       prometheus.Counter
	ActiveSubscriptions prometheus.Gauge
	ChangePublishErrors prometheus.Counter
}

// New creates collectors registered with reg. Passing nil uses a private registry,
// which keeps tests from colliding on the default one.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Metrics{
		Searches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "archive_searches_total",
			Help: "Searches executed, by category",
		}, []string{"category"}),
		SearchResults: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "archive_search_results",
			Help:    "Documents returned per search after residual filtering",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000},
		}),
		MembershipFallbacks: f.NewCounter(prometheus.CounterOpts{
			Name: "archive_membership_fallbacks_total",
			Help: "Type membership predicates dropped to residual filtering",
		}),
		StoreErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "archive_store_errors_total",
			Help: "Document store failures, by operation",
		}, []string{"op"}),
		DocumentWrites: f.NewCounterVec(prometheus.CounterOpts{
			Name: "archive_document_writes_total",
			Help: "Successful document mutations, by operation",
		}, []string{"op"}),
		LoginFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "archive_login_failures_total",
			Help: "Rejected admin sign-in attempts",
		}),
		ActiveSubscriptions: f.NewGauge(prometheus.GaugeOpts{
			Name: "archive_active_subscriptions",
			Help: "Open live admin document subscriptions",
		}),
		ChangePublishErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "archive_change_publish_errors_total",
			Help: "Change events that could not be published to the change feed",
		}),
	}
}
