package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Engine instrumentation. Counters are labeled by instrument so a single
// misbehaving feed is visible without log digging.
var (
	TicksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "riskstream",
		Name:      "ticks_processed_total",
		Help:      "Ticks successfully processed through the risk pipeline",
	}, []string{"instrument"})

	TicksRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "riskstream",
		Name:      "ticks_rejected_total",
		Help:      "Ticks rejected before mutating instrument state",
	}, []string{"instrument", "reason"})

	EventsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "riskstream",
		Name:      "risk_events_total",
		Help:      "Risk events emitted by kind",
	}, []string{"instrument", "kind"})

	RiskScore = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "riskstream",
		Name:      "risk_score",
		Help:      "Current risk health score per instrument",
	}, []string{"instrument"})

	RegimeLevel = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "riskstream",
		Name:      "risk_regime_level",
		Help:      "Current regime as an ordinal: 0 stable, 1 sensitive, 2 fragile",
	}, []string{"instrument"})

	PublicationsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "riskstream",
		Name:      "publications_dropped_total",
		Help:      "Output records dropped because the publication buffer was full",
	})
)

// Rejection reason labels
const (
	ReasonInvalidInput      = "invalid_input"
	ReasonOutOfOrder        = "out_of_order"
	ReasonUnknownInstrument = "unknown_instrument"
)

// Handler returns the Prometheus scrape handler
func Handler() http.Handler {
	return promhttp.Handler()
}
