package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics records counters for the domain operations that matter
// operationally: checkout outcomes and cart sync volume.
type HTTPMetrics struct {
	checkouts *prometheus.CounterVec
	cartSyncs prometheus.Counter
}

// NewHTTPMetrics registers the request metrics on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_total",
		Help: "Checkout attempts by outcome.",
	}, []string{"outcome"})
	cartSyncs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_sync_total",
		Help: "Cart sync requests processed.",
	})
	reg.MustRegister(checkouts, cartSyncs)
	return &HTTPMetrics{
		checkouts: checkouts,
		cartSyncs: cartSyncs,
	}
}

// IncCheckout increments the checkout counter for the given outcome label.
func (m *HTTPMetrics) IncCheckout(outcome string) {
	if m == nil || m.checkouts == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.checkouts.WithLabelValues(outcome).Inc()
}

// IncCartSync increments the cart sync counter.
func (m *HTTPMetrics) IncCartSync() {
	if m == nil || m.cartSyncs == nil {
		return
	}
	m.cartSyncs.Inc()
}
