// Package metrics records commission activity as Prometheus metrics.
//
// The CLI is short-lived, so metrics are written in the text exposition format
// to a file for the node_exporter textfile collector instead of being served.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the brokerage metrics. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	transactions *prometheus.CounterVec
	commission   *prometheus.CounterVec
	capCrossings prometheus.Counter
	rollovers    prometheus.Counter
	rejections   *prometheus.CounterVec
	duration     prometheus.Histogram
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brokerage_transactions_recorded_total",
			Help: "Transactions recorded, by calculation variant.",
		}, []string{"variant"}),
		commission: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brokerage_commission_amount_total",
			Help: "Settled commission amounts, by party.",
		}, []string{"party"}),
		capCrossings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "brokerage_agent_cap_crossings_total",
			Help: "Times an agent moved from below to at-or-above the salary cap.",
		}),
		rollovers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "brokerage_agent_year_rollovers_total",
			Help: "Agent ledgers reset for a new commission year.",
		}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brokerage_transactions_rejected_total",
			Help: "Transactions rejected, by reason.",
		}, []string{"reason"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "brokerage_record_duration_seconds",
			Help:    "Time to lock, calculate and commit a transaction.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	r.registry.MustRegister(r.transactions, r.commission, r.capCrossings, r.rollovers, r.rejections, r.duration)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// TransactionRecorded counts a committed transaction and its settled amounts.
func (r *Recorder) TransactionRecorded(variant string, company, selling, listing float64) {
	if r == nil {
		return
	}
	r.transactions.WithLabelValues(variant).Inc()
	r.commission.WithLabelValues("company").Add(company)
	r.commission.WithLabelValues("selling_agent").Add(selling)
	if listing > 0 {
		r.commission.WithLabelValues("listing_agent").Add(listing)
	}
}

// CapCrossed counts agents that reached their cap.
func (r *Recorder) CapCrossed(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.capCrossings.Add(float64(n))
}

// RolledOver counts ledger resets.
func (r *Recorder) RolledOver(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.rollovers.Add(float64(n))
}

// Rejected counts a transaction that failed before commit.
func (r *Recorder) Rejected(reason string) {
	if r == nil {
		return
	}
	r.rejections.WithLabelValues(reason).Inc()
}

// ObserveDuration records how long a record operation took, in seconds.
func (r *Recorder) ObserveDuration(seconds float64) {
	if r == nil {
		return
	}
	r.duration.Observe(seconds)
}

// WriteTextfile writes all metrics to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return errors.New("metrics recorder is not configured")
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
