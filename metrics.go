package gatedbloom

import "github.com/prometheus/client_golang/prometheus"

// StatsCollector exports a Statistics instance as Prometheus metrics. The
// counters are read at scrape time. Statistics.Clear zeroes them, which
// Prometheus sees as a counter reset.
type StatsCollector struct {
	stats   *Statistics
	inserts *prometheus.Desc
	deletes *prometheus.Desc
	filter  *prometheus.Desc
}

// NewStatsCollector returns a collector for stats. labels are attached to
// every metric as constant labels.
func NewStatsCollector(namespace string, stats *Statistics, labels prometheus.Labels) *StatsCollector {
	return &StatsCollector{
		stats: stats,
		inserts: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "gate", "inserts_total"),
			"Number of items merged into the gate.",
			nil, labels,
		),
		deletes: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "gate", "deletes_total"),
			"Number of items removed through the gate.",
			nil, labels,
		),
		filter: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "gate", "filter_count"),
			"Inserts minus deletes.",
			nil, labels,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *StatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.inserts
	ch <- c.deletes
	ch <- c.filter
}

// Collect implements prometheus.Collector.
func (c *StatsCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.inserts, prometheus.CounterValue, float64(c.stats.InsertCount()))
	ch <- prometheus.MustNewConstMetric(c.deletes, prometheus.CounterValue, float64(c.stats.DeleteCount()))
	ch <- prometheus.MustNewConstMetric(c.filter, prometheus.GaugeValue, float64(c.stats.FilterCount()))
}
