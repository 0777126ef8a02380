// control/collector.go
// Author: momentics <momentics@gmail.com>
//
// Prometheus bridge for pool statistics.

package control

import (
	"github.com/momentics/hioload-pool/api"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "hioload"
	metricsSubsystem = "pool"
)

// PoolCollector reads api.PoolStats at scrape time.
type PoolCollector struct {
	src api.StatsSource

	acquires   *prometheus.Desc
	releases   *prometheus.Desc
	grows      *prometheus.Desc
	casRetries *prometheus.Desc
	live       *prometheus.Desc
	highWater  *prometheus.Desc
	chunks     *prometheus.Desc
	capacity   *prometheus.Desc
}

var _ prometheus.Collector = (*PoolCollector)(nil)

// NewPoolCollector builds a collector labelled pool=name.
func NewPoolCollector(name string, src api.StatsSource) *PoolCollector {
	labels := prometheus.Labels{"pool": name}
	desc := func(metric, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, metricsSubsystem, metric),
			help, nil, labels)
	}
	return &PoolCollector{
		src:        src,
		acquires:   desc("acquires_total", "Objects handed out by the pool."),
		releases:   desc("releases_total", "Objects returned to the pool."),
		grows:      desc("chunk_grows_total", "Chunks allocated by the pool."),
		casRetries: desc("cas_retries_total", "Failed compare-and-swap attempts on the free list."),
		live:       desc("live_objects", "Objects currently acquired."),
		highWater:  desc("live_objects_high_water", "Largest number of simultaneously acquired objects."),
		chunks:     desc("chunks", "Chunks currently allocated."),
		capacity:   desc("capacity_objects", "Hard ceiling of objects the pool can hold."),
	}
}

// Describe implements prometheus.Collector.
func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquires
	ch <- c.releases
	ch <- c.grows
	ch <- c.casRetries
	ch <- c.live
	ch <- c.highWater
	ch <- c.chunks
	ch <- c.capacity
}

// Collect implements prometheus.Collector.
func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	st := c.src.Stats()
	ch <- prometheus.MustNewConstMetric(c.acquires, prometheus.CounterValue, float64(st.Acquires))
	ch <- prometheus.MustNewConstMetric(c.releases, prometheus.CounterValue, float64(st.Releases))
	ch <- prometheus.MustNewConstMetric(c.grows, prometheus.CounterValue, float64(st.Grows))
	ch <- prometheus.MustNewConstMetric(c.casRetries, prometheus.CounterValue, float64(st.CASRetries))
	ch <- prometheus.MustNewConstMetric(c.live, prometheus.GaugeValue, float64(st.Live))
	ch <- prometheus.MustNewConstMetric(c.highWater, prometheus.GaugeValue, float64(st.HighWater))
	ch <- prometheus.MustNewConstMetric(c.chunks, prometheus.GaugeValue, float64(st.Chunks))
	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(st.Capacity))
}
