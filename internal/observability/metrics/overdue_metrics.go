package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// OverdueMetrics tracks the overdue reconciliation worker.
type OverdueMetrics struct {
	invoicesMarked prometheus.Counter
	backlog        prometheus.Gauge
	runErrors      prometheus.Counter
}

var (
	overdueMetricsOnce sync.Once
	overdueMetrics     *OverdueMetrics
)

// Overdue returns the process-wide overdue worker metrics.
func Overdue() *OverdueMetrics {
	return OverdueWithConfig(Config{})
}

// OverdueWithConfig returns the overdue worker metrics, registering them
// on first use.
func OverdueWithConfig(cfg Config) *OverdueMetrics {
	overdueMetricsOnce.Do(func() {
		overdueMetrics = newOverdueMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return overdueMetrics
}

// ResetOverdueMetricsForTest clears the singleton between tests.
func ResetOverdueMetricsForTest() {
	if overdueMetrics != nil {
		prometheus.DefaultRegisterer.Unregister(overdueMetrics.invoicesMarked)
		prometheus.DefaultRegisterer.Unregister(overdueMetrics.backlog)
		prometheus.DefaultRegisterer.Unregister(overdueMetrics.runErrors)
	}
	overdueMetricsOnce = sync.Once{}
	overdueMetrics = nil
}

func newOverdueMetrics(registerer prometheus.Registerer, cfg Config) *OverdueMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "einvoicing"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	m := &OverdueMetrics{
		invoicesMarked: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "invoice_overdue_marked_total",
			Help:        "Invoices transitioned to overdue by the reconciliation worker.",
			ConstLabels: constLabels,
		}),
		backlog: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "invoice_overdue_backlog",
			Help:        "Sent invoices past due awaiting the reconciliation worker.",
			ConstLabels: constLabels,
		}),
		runErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "invoice_overdue_run_errors_total",
			Help:        "Failed overdue reconciliation runs.",
			ConstLabels: constLabels,
		}),
	}

	registerer.MustRegister(m.invoicesMarked, m.backlog, m.runErrors)
	return m
}

// AddMarked records invoices marked overdue in one pass.
func (m *OverdueMetrics) AddMarked(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.invoicesMarked.Add(float64(count))
}

// SetBacklog records the remaining backlog after a pass.
func (m *OverdueMetrics) SetBacklog(count int64) {
	if m == nil {
		return
	}
	m.backlog.Set(float64(count))
}

// IncRunError records a failed pass.
func (m *OverdueMetrics) IncRunError() {
	if m == nil {
		return
	}
	m.runErrors.Inc()
}
