package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	DocumentsSaved = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cooperval", Name: "documents_saved_total", Help: "Number of content documents created or updated, by kind."},
		[]string{"kind"},
	)
	DocumentsDeleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cooperval", Name: "documents_deleted_total", Help: "Number of content documents deleted, by kind."},
		[]string{"kind"},
	)
	ReconcileRefetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cooperval", Name: "reconcile_refetch_total", Help: "Number of delayed authoritative list re-fetches after delete, by kind."},
		[]string{"kind"},
	)
	AssetUploads = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "cooperval", Name: "asset_uploads_total", Help: "Number of binary assets uploaded to object storage."},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cooperval", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cooperval", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(DocumentsSaved)
	reg.MustRegister(DocumentsDeleted)
	reg.MustRegister(ReconcileRefetches)
	reg.MustRegister(AssetUploads)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
