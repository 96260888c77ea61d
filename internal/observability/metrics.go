package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	vendorCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stridesync",
		Subsystem: "vendor",
		Name:      "calls_total",
		Help:      "Vendor API calls by vendor, operation, and outcome.",
	}, []string{"vendor", "op", "outcome"})
	reconnects = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stridesync",
		Subsystem: "vendor",
		Name:      "reconnects_total",
		Help:      "Silent session reconnect attempts by vendor and outcome.",
	}, []string{"vendor", "outcome"})
	cacheRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stridesync",
		Subsystem: "cache",
		Name:      "requests_total",
		Help:      "Result cache lookups by resource and result (hit/miss).",
	}, []string{"resource", "result"})
)

func init() {
	prometheus.MustRegister(vendorCalls, reconnects, cacheRequests)
}

// RecordVendorCall counts one vendor API call outcome.
func RecordVendorCall(vendor, op, outcome string) {
	vendorCalls.WithLabelValues(vendor, op, outcome).Inc()
}

// RecordReconnect counts one silent reconnect attempt.
func RecordReconnect(vendor, outcome string) {
	reconnects.WithLabelValues(vendor, outcome).Inc()
}

// RecordCacheRequest counts one cache lookup result.
func RecordCacheRequest(resource, result string) {
	cacheRequests.WithLabelValues(resource, result).Inc()
}
