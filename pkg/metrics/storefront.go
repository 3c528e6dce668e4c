package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Breaker state gauge values.
const (
	BreakerClosed   = 0
	BreakerHalfOpen = 1
	BreakerOpen     = 2
)

// Storefront records cart, session, checkout and backend activity.
type Storefront struct {
	cartMutations      *prometheus.CounterVec
	restoreOutcomes    *prometheus.CounterVec
	sessionTransitions *prometheus.CounterVec
	checkoutOutcomes   *prometheus.CounterVec
	backendDuration    *prometheus.HistogramVec
	breakerState       *prometheus.GaugeVec
	activeClients      prometheus.Gauge
}

// NewStorefront registers the storefront metrics on the provided registerer.
// A nil registerer yields a recorder whose methods are no-ops.
func NewStorefront(reg prometheus.Registerer) *Storefront {
	if reg == nil {
		return &Storefront{}
	}
	m := &Storefront{
		cartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_cart_mutations_total",
			Help: "Cart mutations by operation and result.",
		}, []string{"operation", "result"}),
		restoreOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_restore_outcomes_total",
			Help: "Persisted state restorations by slot and outcome.",
		}, []string{"slot", "outcome"}),
		sessionTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_session_transitions_total",
			Help: "Session state transitions.",
		}, []string{"transition"}),
		checkoutOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_checkout_outcomes_total",
			Help: "Checkout submissions by outcome.",
		}, []string{"outcome"}),
		backendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_backend_request_duration_seconds",
			Help:    "Duration of backend calls in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint", "outcome"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "storefront_backend_breaker_state",
			Help: "Backend circuit breaker state (0 closed, 1 half-open, 2 open).",
		}, []string{"breaker"}),
		activeClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storefront_active_clients",
			Help: "Visitor clients currently held in memory.",
		}),
	}
	reg.MustRegister(
		m.cartMutations,
		m.restoreOutcomes,
		m.sessionTransitions,
		m.checkoutOutcomes,
		m.backendDuration,
		m.breakerState,
		m.activeClients,
	)
	return m
}

func (m *Storefront) IncCartMutation(operation, result string) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(operation), normalizeLabel(result)).Inc()
}

func (m *Storefront) IncRestore(slot, outcome string) {
	if m == nil || m.restoreOutcomes == nil {
		return
	}
	m.restoreOutcomes.WithLabelValues(normalizeLabel(slot), normalizeLabel(outcome)).Inc()
}

func (m *Storefront) IncSessionTransition(transition string) {
	if m == nil || m.sessionTransitions == nil {
		return
	}
	m.sessionTransitions.WithLabelValues(normalizeLabel(transition)).Inc()
}

func (m *Storefront) IncCheckout(outcome string) {
	if m == nil || m.checkoutOutcomes == nil {
		return
	}
	m.checkoutOutcomes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *Storefront) ObserveBackendCall(endpoint, outcome string, duration time.Duration) {
	if m == nil || m.backendDuration == nil {
		return
	}
	m.backendDuration.WithLabelValues(normalizeLabel(endpoint), normalizeLabel(outcome)).Observe(duration.Seconds())
}

func (m *Storefront) SetBreakerState(name string, state int) {
	if m == nil || m.breakerState == nil {
		return
	}
	m.breakerState.WithLabelValues(normalizeLabel(name)).Set(float64(state))
}

func (m *Storefront) SetActiveClients(n int) {
	if m == nil || m.activeClients == nil {
		return
	}
	m.activeClients.Set(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
