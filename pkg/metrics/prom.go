package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CodesGenerated counts issued access codes.
	CodesGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shopbot_access_codes_generated_total",
			Help: "Total number of generated access codes",
		},
	)

	// CodeRedemptions counts verification attempts by outcome.
	CodeRedemptions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopbot_access_code_redemptions_total",
			Help: "Total number of access code verification attempts",
		},
		[]string{"reason"}, // success, already_authorized, invalid, expired
	)

	// BroadcastSends counts per-recipient delivery attempts by outcome.
	BroadcastSends = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopbot_broadcast_sends_total",
			Help: "Total number of broadcast delivery attempts",
		},
		[]string{"status"}, // ok, failed
	)

	// ProductViews counts catalog item views recorded by the stats layer.
	ProductViews = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shopbot_product_views_total",
			Help: "Total number of recorded product views",
		},
	)

	// StorageErrors counts failed document store operations.
	StorageErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopbot_storage_errors_total",
			Help: "Total number of document store failures",
		},
		[]string{"document"},
	)
)

func init() {
	prometheus.MustRegister(
		CodesGenerated,
		CodeRedemptions,
		BroadcastSends,
		ProductViews,
		StorageErrors,
	)
}

// Handler exposes the default registry for the status API's /metrics route.
func Handler() http.Handler {
	return promhttp.Handler()
}
