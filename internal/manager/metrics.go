package manager

import (
	"sync/atomic"

	"github.com/projecteru2/core/utils"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/projecteru2/yanet/configs"
)

var (
	applyTotalDesc = prometheus.NewDesc(
		prometheus.BuildFQName("node", "netsetup", "apply_total"),
		"total desired-state apply attempts.",
		[]string{"node"},
		nil)
	applyFailsDesc = prometheus.NewDesc(
		prometheus.BuildFQName("node", "netsetup", "apply_failures_total"),
		"failed desired-state apply attempts.",
		[]string{"node"},
		nil)
	healthyDesc = prometheus.NewDesc(
		prometheus.BuildFQName("node", "netsetup", "healthy"),
		"nmstate backend healthy status.",
		[]string{"node"},
		nil)
)

// MetricsCollector .
type MetricsCollector struct {
	applyTotal atomic.Int64
	applyFails atomic.Int64
	healthy    atomic.Bool
}

func (e *MetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- applyTotalDesc
	ch <- applyFailsDesc
	ch <- healthyDesc
}

func (e *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(
		applyTotalDesc,
		prometheus.CounterValue,
		float64(e.applyTotal.Load()),
		configs.Hostname(),
	)
	ch <- prometheus.MustNewConstMetric(
		applyFailsDesc,
		prometheus.CounterValue,
		float64(e.applyFails.Load()),
		configs.Hostname(),
	)
	ch <- prometheus.MustNewConstMetric(
		healthyDesc,
		prometheus.GaugeValue,
		float64(utils.Bool2Int(e.healthy.Load())),
		configs.Hostname(),
	)
}
