package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DocumentCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_document_created_total",
		Help: "no. of documents created",
	})
	DocumentUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_document_updated_total",
		Help: "no. of documents updated",
	})
	DocumentDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_document_deleted_total",
		Help: "no. of documents deleted",
	})
	DocumentDuplicated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_document_duplicated_total",
		Help: "no. of documents duplicated",
	})
	DocumentViewed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_document_viewed_total",
		Help: "no. of document views",
	})
	SignIns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkwell_signin_total",
			Help: "no. of sign-in attempts",
		},
		[]string{"outcome"},
	)
	Registrations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_registration_total",
		Help: "no. of accounts created",
	})
	RenderCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_render_cache_hits_total",
		Help: "no. of render cache hits",
	})
	RenderCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_render_cache_misses_total",
		Help: "no. of render cache misses",
	})
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inkwell_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkwell_rate_limit_hits_total",
			Help: "no. of rate limit violations",
		},
		[]string{"endpoint"},
	)
)

func Init() {
}
