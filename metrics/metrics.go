// Package metrics records ledger activity as Prometheus metrics. The cbx tool
// is short lived, so metrics are written to a node_exporter textfile rather
// than served.
package metrics

import (
	"strconv"

	"github.com/fueleu/compliance"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "cbx_"

	resultCommitted = "committed"
	resultRejected  = "rejected"
)

// Recorder implements compliance.Observer on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	operations *prometheus.CounterVec
	rejections *prometheus.CounterVec
	moved      *prometheus.CounterVec
	balance    *prometheus.GaugeVec
	banked     *prometheus.GaugeVec
}

var _ compliance.Observer = (*Recorder)(nil)

// New creates a recorder with its metrics registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "operations_total",
				Help: "Ledger operations by kind and result",
			},
			[]string{"op", "result"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "rejections_total",
				Help: "Rejected ledger operations by kind and reason",
			},
			[]string{"op", "reason"},
		),
		moved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "moved_gco2eq_total",
				Help: "Compliance balance moved by committed transactions, in gCO2eq",
			},
			[]string{"op"},
		),
		balance: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "balance_gco2eq",
				Help: "Live compliance balance per ship and period, in gCO2eq",
			},
			[]string{"ship", "year"},
		),
		banked: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "banked_gco2eq",
				Help: "Banked compliance balance per ship, in gCO2eq",
			},
			[]string{"ship"},
		),
	}
	r.registry.MustRegister(r.operations, r.rejections, r.moved, r.balance, r.banked)
	return r
}

// Registry returns the registry holding the recorder metrics.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// OnCommit counts the operation and the balance it moved.
func (r *Recorder) OnCommit(op compliance.CommandType, txs []compliance.Transaction) {
	r.operations.WithLabelValues(string(op), resultCommitted).Inc()
	var moved compliance.CB
	for _, tx := range txs {
		moved = moved.Add(tx.Amount)
	}
	if len(txs) == 0 {
		return
	}
	amount := moved.Float()
	if op == compliance.CmdPool {
		// Every transfer shows up twice, once per side.
		amount /= 2
	}
	r.moved.WithLabelValues(string(op)).Add(amount)
}

// OnReject counts the rejection by reason.
func (r *Recorder) OnReject(op compliance.CommandType, err error) {
	r.operations.WithLabelValues(string(op), resultRejected).Inc()
	r.rejections.WithLabelValues(string(op), compliance.Kind(err)).Inc()
}

// ObserveLedger sets the balance and banked gauges from the ledger state.
func (r *Recorder) ObserveLedger(l *compliance.Ledger) {
	r.balance.Reset()
	r.banked.Reset()
	for ship := range l.Ships() {
		for _, y := range l.Periods(ship) {
			b, err := l.Balance(ship, y)
			if err != nil {
				continue
			}
			r.balance.WithLabelValues(ship, strconv.Itoa(y)).Set(b.Value.Float())
		}
		r.banked.WithLabelValues(ship).Set(l.Banked(ship).Float())
	}
}

// WriteTextfile writes every metric to path in the text exposition format,
// atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
